package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"

	"github.com/mit-pdos/go-sfs/common"
	"github.com/mit-pdos/go-sfs/sfs"
	"github.com/mit-pdos/go-sfs/util"
)

type app struct {
	cfg *Config
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func inumFlag(usage string) cli.Flag {
	return &cli.Uint64Flag{
		Name:     "inum",
		Aliases:  []string{"i"},
		Usage:    usage,
		Required: true,
	}
}

func newApp() *cli.App {
	a := &app{}
	return &cli.App{
		Name:  appName,
		Usage: "a small inode file system inside a single volume file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file (default $SFS_CONFIG_FILE or the user config dir)",
			},
			&cli.StringFlag{
				Name:    "disk",
				Aliases: []string{"d"},
				Usage:   "volume file (default " + defaultDisk + ")",
			},
			&cli.Uint64Flag{
				Name:  "debug",
				Usage: "debug level (higher is more verbose)",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print operation and disk latencies to stderr",
			},
		},
		Before: a.configure,
		Commands: []*cli.Command{{
			Name:  "format",
			Usage: "create an empty volume",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:  "size",
					Usage: "volume size in bytes, a multiple of 4096",
				},
			},
			Action: a.format,
		}, {
			Name:   "info",
			Usage:  "show the volume geometry and usage",
			Action: a.withVolume(info),
		}, {
			Name:  "write",
			Usage: "store the contents of a file (or stdin) in an inode",
			Flags: []cli.Flag{
				inumFlag("the inode to write"),
				&cli.StringFlag{
					Name:  "input",
					Usage: "file to copy in, - for stdin",
					Value: "-",
				},
				&cli.BoolFlag{
					Name:  "append",
					Usage: "append instead of replacing the file",
				},
			},
			Action: a.withVolume(write),
		}, {
			Name:  "read",
			Usage: "print the contents of an inode",
			Flags: []cli.Flag{
				inumFlag("the inode to read"),
				&cli.Uint64Flag{
					Name:  "offset",
					Usage: "first byte to read",
				},
				&cli.Uint64Flag{
					Name:  "length",
					Usage: "number of bytes to read (default: to the end)",
				},
			},
			Action: a.withVolume(read),
		}, {
			Name:    "rm",
			Aliases: []string{"delete"},
			Usage:   "delete the file held by an inode",
			Flags:   []cli.Flag{inumFlag("the inode to delete")},
			Action: a.withVolume(func(v *sfs.Volume, ctx *cli.Context) error {
				return v.Delete(common.Inum(ctx.Uint64("inum")))
			}),
		}, {
			Name:  "fsck",
			Usage: "check the free-block bitmap against the inode table",
			Action: a.withVolume(func(v *sfs.Volume, ctx *cli.Context) error {
				if err := v.Check(); err != nil {
					return err
				}
				fmt.Fprintln(ctx.App.Writer, "ok")
				return nil
			}),
		}, {
			Name:   "demo",
			Usage:  "format a 4-block volume, write a string twice and read it back",
			Action: a.demo,
		}},
	}
}

func (a *app) configure(ctx *cli.Context) error {
	c, err := LoadConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	if ctx.IsSet("disk") {
		c.Disk = ctx.String("disk")
	}
	if ctx.IsSet("debug") {
		c.Debug = ctx.Uint64("debug")
	}
	if ctx.IsSet("stats") {
		c.Stats = ctx.Bool("stats")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	util.Debug = c.Debug
	a.cfg = c
	return nil
}

func (a *app) format(ctx *cli.Context) error {
	size := a.cfg.Size
	if ctx.IsSet("size") {
		size = ctx.Uint64("size")
	}
	if err := sfs.Format(a.cfg.Disk, size); err != nil {
		return fmt.Errorf("formatting %s: %w", a.cfg.Disk, err)
	}
	fmt.Fprintf(ctx.App.Writer, "formatted %s: %d blocks\n", a.cfg.Disk, size/common.BlockSize)
	return nil
}

func (a *app) mount() (*sfs.Volume, error) {
	var opts []sfs.Option
	if a.cfg.Stats {
		opts = append(opts, sfs.WithStats())
	}
	v, err := sfs.Mount(a.cfg.Disk, opts...)
	if err != nil {
		return nil, fmt.Errorf("mounting %s: %w", a.cfg.Disk, err)
	}
	return v, nil
}

func (a *app) unmount(v *sfs.Volume, ctx *cli.Context) error {
	if a.cfg.Stats {
		v.WriteStats(ctx.App.ErrWriter)
	}
	return v.Unmount()
}

func (a *app) withVolume(f func(*sfs.Volume, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		v, err := a.mount()
		if err != nil {
			return err
		}
		err = f(v, ctx)
		if uerr := a.unmount(v, ctx); err == nil {
			err = uerr
		}
		return err
	}
}

func info(v *sfs.Volume, ctx *cli.Context) error {
	st, err := v.Statfs()
	if err != nil {
		return err
	}
	sb := v.Super()
	tbl := table.New("field", "value")
	tbl.WithWriter(ctx.App.Writer)
	tbl.AddRow("magic", fmt.Sprintf("%#x", sb.Magic))
	tbl.AddRow("blocks", st.Blocks)
	tbl.AddRow("inode blocks", st.InodeBlocks)
	tbl.AddRow("inodes", st.Inodes)
	tbl.AddRow("used inodes", st.UsedInodes)
	tbl.AddRow("first data block", st.DataStart)
	tbl.AddRow("free blocks", st.FreeBlocks)
	tbl.Print()
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func write(v *sfs.Volume, ctx *cli.Context) error {
	inum := common.Inum(ctx.Uint64("inum"))
	data, err := readInput(ctx.String("input"))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	mode := sfs.ModeWrite
	if ctx.Bool("append") {
		mode = sfs.ModeRead
	}
	f, err := v.Open(inum, mode)
	if errors.Is(err, sfs.ErrFileNotFound) {
		f, err = v.Open(inum, sfs.ModeWrite)
	}
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := f.Write(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "wrote %d bytes to inode %d, size %d\n", n, inum, f.Size())
	return nil
}

func read(v *sfs.Volume, ctx *cli.Context) error {
	f, err := v.Open(common.Inum(ctx.Uint64("inum")), sfs.ModeRead)
	if err != nil {
		return err
	}
	defer f.Close()
	off := ctx.Uint64("offset")
	if err := f.Seek(off); err != nil {
		return err
	}
	length := ctx.Uint64("length")
	if !ctx.IsSet("length") {
		length = 0
		if off < f.Size() {
			length = f.Size() - off
		}
	}
	buf := make([]byte, length)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(buf[:n])
	return err
}

const demoText = "Hello from a tiny inode file system!"

func (a *app) demo(ctx *cli.Context) error {
	w := ctx.App.Writer
	if err := sfs.Format(a.cfg.Disk, 4*common.BlockSize); err != nil {
		return err
	}
	v, err := a.mount()
	if err != nil {
		return err
	}
	sb := v.Super()
	fmt.Fprintf(w, "Disk info: [blocks: %d] [inode blocks: %d] [inodes: %d]\n",
		sb.Blocks, sb.InodeBlocks, sb.Inodes)

	err = func() error {
		out, err := v.Open(0, sfs.ModeWrite)
		if err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			if _, err := out.Write([]byte(demoText)); err != nil {
				return err
			}
		}
		if err := out.Close(); err != nil {
			return err
		}

		in, err := v.Open(0, sfs.ModeRead)
		if err != nil {
			return err
		}
		defer in.Close()
		buf := make([]byte, 80)
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", buf[:n])
		return nil
	}()
	if uerr := a.unmount(v, ctx); err == nil {
		err = uerr
	}
	return err
}
