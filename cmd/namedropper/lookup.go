// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/namedropper/internal/dbpedia"
	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/normalize"
	"github.com/pdiddy/namedropper/internal/spotlight"
	"github.com/pdiddy/namedropper/internal/xmldoc"
	"github.com/pdiddy/namedropper/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup FILE",
	Short: "List the names DBpedia Spotlight recognizes in a document",
	Long: `Lookup splits a document into sections (EAD biographical note, series
scope notes and item titles; TEI divisions; or the whole of a plain text
file), sends each section's text to DBpedia Spotlight and lists the names
recognized, with their DBpedia URIs. The document is not modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("input", "", "input type: tei, ead or text (default: detect)")
	lookupCmd.Flags().String("xpath", "", "XPath selecting the elements to look up")
	lookupCmd.Flags().String("format", "text", "output format: text or yaml")

	rootCmd.AddCommand(lookupCmd)
}

// recognizer finds entities in plain text.
type recognizer interface {
	Annotate(ctx context.Context, text string) ([]types.RecognizedSpan, error)
}

// lookupName is one recognized name.
type lookupName struct {
	Surface string `yaml:"surface"`
	URI     string `yaml:"uri"`
	Type    string `yaml:"type"`
}

// lookupSection is the names found in one section.
type lookupSection struct {
	Label string       `yaml:"label"`
	Names []lookupName `yaml:"names"`
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	inputFlag, _ := cmd.Flags().GetString("input")
	expr, _ := cmd.Flags().GetString("xpath")
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unknown format %q: use text or yaml", format)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	typ := xmldoc.Detect(data)
	if inputFlag != "" {
		if typ, err = xmldoc.ParseType(inputFlag); err != nil {
			return err
		}
	}
	sections, err := sectionsFor(data, typ, expr)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	spot := spotlight.NewClient(cfg.Spotlight, httputil.NewClient(cfg.HTTP))
	found, err := lookupSections(cmd.Context(), spot, sections)
	if err != nil {
		return err
	}
	if err := formatLookup(os.Stdout, found, format); err != nil {
		return err
	}
	st := spot.Stats()
	logger.Info("lookup finished", "file", filepath.Base(args[0]), "type", typ, "sections", len(sections), "calls", st.Calls, "duration", st.Duration)
	return nil
}

// sectionsFor splits a document into the sections looked up separately.
func sectionsFor(data []byte, typ xmldoc.Type, expr string) ([]xmldoc.Section, error) {
	if typ == xmldoc.Text {
		return []xmldoc.Section{{Label: "Text", Texts: []string{normalize.Space(string(data))}}}, nil
	}
	doc, err := xmldoc.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	switch {
	case expr != "":
		return xmldoc.XPathSections(doc, expr)
	case typ == xmldoc.EAD:
		return xmldoc.EADSections(doc), nil
	case typ == xmldoc.TEI:
		return xmldoc.TEISections(doc), nil
	}
	return nil, xmldoc.ErrUnknownType
}

// lookupSections recognizes the names in each section. Texts repeated
// anywhere in the document are only sent once, and each name is listed
// once per section.
func lookupSections(ctx context.Context, r recognizer, sections []xmldoc.Section) ([]lookupSection, error) {
	seenText := make(map[string]bool)
	var out []lookupSection
	for _, s := range sections {
		ls := lookupSection{Label: s.Label}
		seenName := make(map[lookupName]bool)
		for _, text := range s.Texts {
			if text == "" || seenText[text] {
				continue
			}
			seenText[text] = true
			spans, err := r.Annotate(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", s.Label, err)
			}
			for _, sp := range spans {
				n := lookupName{
					Surface: sp.SurfaceForm,
					URI:     sp.URI,
					Type:    dbpedia.Classify(sp.TypeHints, nil, sp.URI).String(),
				}
				if !seenName[n] {
					seenName[n] = true
					ls.Names = append(ls.Names, n)
				}
			}
		}
		out = append(out, ls)
	}
	return out, nil
}

func formatLookup(w io.Writer, sections []lookupSection, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sections); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	}

	total := 0
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s\n", s.Label)
		if len(s.Names) == 0 {
			fmt.Fprintln(w, "  (no names recognized)")
			continue
		}
		for _, n := range s.Names {
			fmt.Fprintf(w, "  %-40s  %-12s  %s\n", n.Surface, n.Type, n.URI)
		}
		total += len(s.Names)
	}
	fmt.Fprintf(w, "\n%d names in %d sections\n", total, len(sections))
	return nil
}
