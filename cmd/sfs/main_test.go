package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-sfs/sfs"
)

func run(t *testing.T, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{appName}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := isolate(t)
	vol := filepath.Join(dir, "vol.img")
	input := filepath.Join(dir, "input.txt")
	text := strings.Repeat("all work and no play. ", 1000)
	require.NoError(t, os.WriteFile(input, []byte(text), 0644))

	out, err := run(t, "--disk", vol, "format", "--size", "409600")
	require.NoError(t, err)
	assert.Contains(t, out, "100 blocks")

	out, err = run(t, "--disk", vol, "write", "--inum", "3", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "size 22000")

	out, err = run(t, "--disk", vol, "write", "-i", "3", "--input", input, "--append")
	require.NoError(t, err)
	assert.Contains(t, out, "size 44000")

	out, err = run(t, "--disk", vol, "read", "--inum", "3")
	require.NoError(t, err)
	assert.Equal(t, text+text, out)

	out, err = run(t, "--disk", vol, "read", "--inum", "3", "--offset", "22", "--length", "8")
	require.NoError(t, err)
	assert.Equal(t, "all work", out)

	out, err = run(t, "--disk", vol, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "0xf0f03410")
	assert.Contains(t, out, "used inodes")

	out, err = run(t, "--disk", vol, "fsck")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	_, err = run(t, "--disk", vol, "rm", "--inum", "3")
	require.NoError(t, err)
	_, err = run(t, "--disk", vol, "read", "--inum", "3")
	assert.ErrorIs(t, err, sfs.ErrFileNotFound)
}

func TestCommandErrors(t *testing.T) {
	dir := isolate(t)
	vol := filepath.Join(dir, "vol.img")

	_, err := run(t, "--disk", vol, "info")
	assert.ErrorIs(t, err, sfs.ErrVolumeOpenFailure)

	_, err = run(t, "--disk", vol, "format", "--size", "5000")
	assert.ErrorIs(t, err, sfs.ErrInvalidVolumeSize)

	_, err = run(t, "--disk", vol, "format", "--size", "40960")
	require.NoError(t, err)
	_, err = run(t, "--disk", vol, "read", "--inum", "100000")
	assert.ErrorIs(t, err, sfs.ErrInodeIndexOutOfRange)
}

func TestDemo(t *testing.T) {
	dir := isolate(t)
	vol := filepath.Join(dir, "demo.sfs")
	t.Setenv("SFS_DISK", vol)
	t.Setenv("SFS_STATS", "true")

	out, err := run(t, "demo")
	require.NoError(t, err)
	assert.Equal(t,
		"Disk info: [blocks: 4] [inode blocks: 1] [inodes: 128]\n"+demoText+demoText+"\n",
		out)
}
