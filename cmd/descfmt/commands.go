package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hsrcal/internal/config"
	"hsrcal/internal/formatter"
	"hsrcal/internal/render"
	"hsrcal/internal/validator"
)

func normalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Print the normalized lines of a description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			for _, line := range a.lineNormalizer().Lines(text) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}
}

// images returns the resolver from --images when given, otherwise the
// configured section images.
func (a *app) images(cmd *cobra.Command) (*formatter.SectionImages, error) {
	path, _ := cmd.Flags().GetString("images")
	if path == "" {
		return a.cfg.Images(), nil
	}

	images, err := config.LoadSectionImages(path)
	if err != nil {
		return nil, err
	}

	a.log.Debug("section images loaded", "path", path, "titles", images.Len())

	return images, nil
}

func parseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a description into typed blocks and print them as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			images, err := a.images(cmd)
			if err != nil {
				return err
			}

			doc := a.newParser().Parse(text, images)
			a.log.Debug("parsed description", "documentType", doc.Type, "blocks", len(doc.Blocks))

			out, err := render.JSON(doc, a.cfg.Formatter.Output.PrettyPrint)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().String("images", "", "YAML file mapping section titles to image URLs")

	return cmd
}

func renderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Parse a description and render it",
		Long: `Parse a description and render it in one of the supported formats:
json, markdown (md), html, text (txt), terminal.

Example:
  descfmt render --format html description.txt
  cat description.txt | descfmt render --format text --width 60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			width, _ := cmd.Flags().GetInt("width")

			format, err := render.ParseFormat(formatName)
			if err != nil {
				return err
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			images, err := a.images(cmd)
			if err != nil {
				return err
			}

			doc := a.newParser().Parse(text, images)

			out, err := render.Render(doc, format, render.Options{
				Width:       width,
				PrettyPrint: a.cfg.Formatter.Output.PrettyPrint,
			})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	cmd.Flags().StringP("format", "f", string(render.FormatMarkdown), "Output format")
	cmd.Flags().IntP("width", "w", 0, "Cell width for text, wrap width for terminal")
	cmd.Flags().String("images", "", "YAML file mapping section titles to image URLs")

	return cmd
}

func checkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file|-]",
		Short: "Verify that parsed blocks cover the description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			strict = strict || a.cfg.Features.StrictCheck

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			images, err := a.images(cmd)
			if err != nil {
				return err
			}

			doc := a.newParser().Parse(text, images)
			result := validator.Check(a.lineNormalizer().Lines(text), doc.Blocks)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🔍 Document type: %s\n", doc.Type)
			fmt.Fprintln(out, result.String())
			result.PrintErrors(out)
			result.PrintWarnings(out)

			if !result.Passed(strict) {
				return errCheckFailed
			}

			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Fail on warnings as well as errors")
	cmd.Flags().String("images", "", "YAML file mapping section titles to image URLs")

	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>...",
		Short: "Verify the metadata hash of signed rendered documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0

			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				if err := validator.CheckIntegrity(string(content)); err != nil {
					a.log.Error("verification failed", "path", path, "error", err)
					fmt.Fprintf(cmd.OutOrStdout(), "❌ %s: %v\n", path, err)
					failed++

					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s\n", path)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", failed, len(args))
			}

			return nil
		},
	}
}
