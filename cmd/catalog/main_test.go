package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/catalog-search/internal/prompt"
)

type titles map[string]string

func (t titles) FindTitle(_ context.Context, subject, catalogNbr string) (string, bool) {
	title, ok := t[subject+" "+catalogNbr]
	return title, ok
}

func TestRunPrompt_ExitStatus(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name       string
		ctx        context.Context
		in         io.Reader
		wantCode   int
		wantStderr string
	}{
		{
			name:       "quit with n",
			ctx:        context.Background(),
			in:         strings.NewReader("CYOP\n400\nn\n"),
			wantCode:   1,
			wantStderr: "Program Terminating\n",
		},
		{
			name:     "input closed",
			ctx:      context.Background(),
			in:       strings.NewReader("CYOP\n400\n"),
			wantCode: 0,
		},
		{
			name:     "interrupted",
			ctx:      cancelled,
			in:       strings.NewReader("CYOP\n400\nn\n"),
			wantCode: 0,
		},
		{
			name:     "read failure",
			ctx:      context.Background(),
			in:       iotest.ErrReader(errors.New("stdin gone")),
			wantCode: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr, logs bytes.Buffer
			p := prompt.New(titles{"CYOP 400": "Cybersecurity Capstone"}, tt.in, io.Discard)

			code := runPrompt(tt.ctx, p, &stderr, zerolog.New(&logs))
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStderr, stderr.String())
		})
	}
}
