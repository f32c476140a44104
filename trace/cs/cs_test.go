package cs_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun/trace"
	"github.com/m-mizutani/trialrun/trace/cs"
	"google.golang.org/api/option"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := cs.New(context.Background(), "", "reports/")
	gt.Error(t, err)
}

func TestNewWithoutAuthentication(t *testing.T) {
	repo, err := cs.New(context.Background(), "my-bucket", "reports/", option.WithoutAuthentication())
	gt.NoError(t, err)
	gt.NoError(t, repo.Close())

	var _ trace.Repository = repo
	var _ trace.Browser = repo
}
