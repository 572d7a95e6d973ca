package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/cli/render"
	"github.com/poliverai/poliver/transcript"
)

// TranscriptCommand returns the transcript command.
func TranscriptCommand() *cli.Command {
	return &cli.Command{
		Name:      "transcript",
		Usage:     "Dump a recorded verify-stream journal",
		ArgsUsage: "<path>",
		Flags:     []cli.Flag{FormatFlag},
		Action:    transcriptAction,
	}
}

// transcriptRow is the rendered view of one journal record.
type transcriptRow struct {
	Seq   int64          `json:"seq"`
	Time  string         `json:"time"`
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func transcriptAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: poliver transcript <path>", 1)
	}

	renderer, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	r, closer, err := transcript.Open(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = closer.Close() }()

	var rows []transcriptRow
	for {
		record, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cli.Exit(fmt.Sprintf("transcript damaged: %v", err), 1)
		}
		rows = append(rows, transcriptRow{
			Seq:   record.Seq,
			Time:  time.Unix(0, record.Ts).UTC().Format(time.RFC3339Nano),
			Event: record.Event,
			Data:  record.Data,
		})
	}

	return renderer.Render(rows)
}
