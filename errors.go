package trialrun

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInvalidArgument is returned when a run or source is configured with
	// out-of-range parameters. Nothing is executed when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTagInvalidArgument tags errors caused by caller input, so the CLI can
	// tell them apart from I/O failures.
	ErrTagInvalidArgument = goerr.NewTag("invalid_argument")
)

func invalidArgument(msg string, opts ...goerr.Option) error {
	return goerr.Wrap(ErrInvalidArgument, msg, append(opts, goerr.Tag(ErrTagInvalidArgument))...)
}
