package sfs

import "errors"

var (
	ErrInvalidVolumeSize    = errors.New("invalid volume size")
	ErrVolumeOpenFailure    = errors.New("cannot open volume")
	ErrCorruptVolume        = errors.New("corrupt volume")
	ErrInodeIndexOutOfRange = errors.New("inode index out of range")
	ErrFileNotFound         = errors.New("file not found")
	ErrOutOfSpace           = errors.New("out of space")
	ErrFileTooLarge         = errors.New("file too large")
	ErrIoBounds             = errors.New("block access out of bounds")
	ErrInvalidMode          = errors.New("invalid open mode")
	ErrNotMounted           = errors.New("volume not mounted")
	ErrClosed               = errors.New("file already closed")
)
