package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hsrcal/internal/config"
	"hsrcal/internal/events"
	"hsrcal/internal/models"
	"hsrcal/internal/render"
	"hsrcal/internal/validator"
	"hsrcal/pkg/metadata"
)

// errNoEvents is returned when every configured source failed to load.
var errNoEvents = errors.New("no events loaded")

// eventsSummary counts the outcome of one events run.
type eventsSummary struct {
	Events    int
	Written   int
	Unchanged int
	Invalid   int
}

func eventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Format every event description from the configured sources",
		Long: `Load the configured event exports (JSON, JSON Lines or iCalendar),
derive event periods from version update announcements, and parse every
description.

With output.path set, one rendered document per event is written there
(signed with a metadata trailer when output.sign is set); files whose
content is unchanged are left alone. Otherwise a JSON array of formatted
events is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")

			summary, err := a.runEvents(cmd.Context(), source, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			a.log.Info("✅ Events formatted",
				"events", summary.Events,
				"written", summary.Written,
				"unchanged", summary.Unchanged,
				"invalid", summary.Invalid,
			)

			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Only load the named source")

	return cmd
}

func (a *app) sources(name string) ([]config.SourceConfig, error) {
	if name != "" {
		src, err := a.cfg.FindSource(name)
		if err != nil {
			return nil, err
		}

		return []config.SourceConfig{src}, nil
	}

	return a.cfg.EnabledSources()
}

// runEvents loads, resolves, parses and writes the events of the selected sources.
func (a *app) runEvents(ctx context.Context, sourceName string, w io.Writer) (eventsSummary, error) {
	var summary eventsSummary

	if ctx == nil {
		ctx = context.Background()
	}

	sources, err := a.sources(sourceName)
	if err != nil {
		return summary, err
	}

	loader := events.NewLoaderWithConfig(&a.cfg.Formatter.Retry)

	var (
		all    []models.Event
		failed int
	)

	for _, src := range sources {
		a.log.Info("📥 Loading source", "source", src.Name, "from", src.GetSource())

		loaded, err := loader.Load(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return summary, err
			}

			a.log.Error("❌ Source failed", "source", src.Name, "error", err)
			failed++

			continue
		}

		a.log.Info("✅ Source loaded", "source", src.Name, "events", len(loaded))
		all = append(all, loaded...)
	}

	loader.Attempts().LogSummary(a.log)

	if len(all) == 0 && failed > 0 {
		return summary, fmt.Errorf("%w: %d sources failed", errNoEvents, failed)
	}

	if a.cfg.Features.ResolvePeriods {
		pp := events.NewPeriodParser(a.cfg.Formatter.Versions.MaintenanceDuration(), events.DefaultLocation)
		versions := pp.Resolve(all)
		a.log.Info("🗓️  Periods resolved", "versions", len(versions))
	}

	parser := a.newParser()
	images := a.cfg.Images()

	formatted := make([]models.FormattedEvent, 0, len(all))
	for _, ev := range all {
		formatted = append(formatted, models.FormattedEvent{
			Event:    ev,
			Document: parser.Parse(ev.Description, images),
		})
	}

	summary.Events = len(formatted)

	if a.cfg.Formatter.Output.Path == "" {
		return summary, a.writeJSON(w, formatted)
	}

	format, err := render.ParseFormat(a.cfg.Formatter.Output.Format)
	if err != nil {
		return summary, err
	}

	sign := a.cfg.Formatter.Output.Sign
	if sign && format != render.FormatMarkdown && format != render.FormatHTML {
		a.log.Warn("⚠️  Signing is only supported for markdown and html output", "format", format)
		sign = false
	}

	if err := os.MkdirAll(a.cfg.Formatter.Output.Path, 0755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, fe := range formatted {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := validator.Check(a.lineNormalizer().Lines(fe.Description), fe.Document.Blocks)
		if !result.IsValid {
			summary.Invalid++
			a.log.Warn("⚠️  Block check failed", "event", fe.EventID, "result", result.String())
		}

		content, err := render.Render(fe.Document, format, render.Options{PrettyPrint: a.cfg.Formatter.Output.PrettyPrint})
		if err != nil {
			return summary, fmt.Errorf("event %s: %w", fe.EventID, err)
		}

		if sign {
			content = metadata.Sign(content, metadata.Metadata{
				DocType:    string(fe.Document.Type),
				Blocks:     len(fe.Document.Blocks),
				Validation: result.IsValid,
			})
		}

		path := a.cfg.GetOutputPath(safeName(fe.EventID), format)

		written, err := writeIfChanged(path, content)
		if err != nil {
			return summary, err
		}

		if written {
			summary.Written++
			a.log.Debug("wrote event", "event", fe.EventID, "path", path)
		} else {
			summary.Unchanged++
		}
	}

	return summary, nil
}

func (a *app) writeJSON(w io.Writer, formatted []models.FormattedEvent) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if a.cfg.Formatter.Output.PrettyPrint {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(formatted); err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}

	return nil
}

// writeIfChanged writes content to path unless the existing file carries the
// same content, ignoring metadata trailers.
func writeIfChanged(path, content string) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && metadata.SameContent(string(existing), content) {
		return false, nil
	}

	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return true, nil
}

var unsafeNameReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

// safeName turns an event ID into a file name.
func safeName(id string) string {
	name := unsafeNameReplacer.Replace(strings.TrimSpace(id))
	if name == "" {
		return "event"
	}

	return filepath.Base(name)
}
