// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/namedropper/internal/annotate"
	"github.com/pdiddy/namedropper/internal/policy"
	"github.com/pdiddy/namedropper/internal/schema"
	"github.com/pdiddy/namedropper/internal/xmldoc"
	"github.com/pdiddy/namedropper/pkg/types"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate FILE...",
	Short: "Tag recognized names in TEI or EAD documents",
	Long: `Annotate sends the text of each annotation root (TEI body paragraphs, EAD
biographical and scope notes and component titles, or the elements matched
by --xpath) to DBpedia Spotlight and tags the people, organizations and
places it recognizes.

TEI documents get <name ref=".." type=".."> elements; EAD documents get
persname, corpname and geogname with source and authfilenumber attributes.
With --viaf and --geonames, identifiers come from VIAF and GeoNames when
a match is found. Annotated documents are written to stdout, or to --output
DIR under their original file names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("input", "", "input type: tei or ead (default: detect)")
	annotateCmd.Flags().String("xpath", "", "XPath selecting the elements to annotate")
	annotateCmd.Flags().String("vocabulary", "", "markup to insert: tei or ead (default: same as input)")
	annotateCmd.Flags().Bool("viaf", false, "link people to VIAF records")
	annotateCmd.Flags().Bool("geonames", false, "link places to GeoNames records")
	annotateCmd.Flags().Bool("track-changes", false, "record edits as Oxygen tracked changes")
	annotateCmd.Flags().String("author", "", "author recorded on tracked changes")
	annotateCmd.Flags().String("schema", "", "content model YAML checked after each insertion")
	annotateCmd.Flags().StringP("output", "o", "-", "output directory, or - for stdout")
	annotateCmd.Flags().Int("jobs", 0, "documents annotated concurrently (default 4)")

	bindFlag("annotation.vocabulary", annotateCmd.Flags().Lookup("vocabulary"))
	bindFlag("annotation.viaf", annotateCmd.Flags().Lookup("viaf"))
	bindFlag("annotation.geonames", annotateCmd.Flags().Lookup("geonames"))
	bindFlag("annotation.track_changes", annotateCmd.Flags().Lookup("track-changes"))
	bindFlag("annotation.author", annotateCmd.Flags().Lookup("author"))
	bindFlag("annotation.schema", annotateCmd.Flags().Lookup("schema"))
	bindFlag("annotation.jobs", annotateCmd.Flags().Lookup("jobs"))

	rootCmd.AddCommand(annotateCmd)
}

// fileResult is the outcome of annotating one document.
type fileResult struct {
	path     string
	typ      xmldoc.Type
	roots    int
	inserted int
	out      []byte
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	inputFlag, _ := cmd.Flags().GetString("input")
	xpathFlag, _ := cmd.Flags().GetString("xpath")
	output, _ := cmd.Flags().GetString("output")

	input := xmldoc.Unknown
	if inputFlag != "" {
		t, err := xmldoc.ParseType(inputFlag)
		if err != nil {
			return err
		}
		input = t
	}

	var model schema.Model
	if cfg.Annotation.Schema != "" {
		m, err := schema.Load(cfg.Annotation.Schema)
		if err != nil {
			return err
		}
		model = m
	}

	svc := newServices(cfg)
	defer svc.Close()

	jobs := cfg.Annotation.Jobs
	if jobs < 1 {
		jobs = 1
	}
	results := make([]fileResult, len(args))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for i, path := range args {
		g.Go(func() error {
			r, err := annotateFile(ctx, svc, cfg.Annotation, model, input, xpathFlag, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if err := writeResult(output, r); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s (%s): %d names tagged in %d sections\n", r.path, r.typ, r.inserted, r.roots)
	}
	st := svc.spotlight.Stats()
	fmt.Fprintf(os.Stderr, "Spotlight: %d calls in %s\n", st.Calls, st.Duration.Round(time.Millisecond))
	return nil
}

// annotateFile annotates the document at path and returns it serialized.
func annotateFile(ctx context.Context, svc *services, cfg types.AnnotationConfig, model schema.Model, input xmldoc.Type, expr, path string) (fileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{}, err
	}
	typ := input
	if typ == xmldoc.Unknown {
		typ = xmldoc.Detect(data)
	}
	if typ != xmldoc.TEI && typ != xmldoc.EAD {
		return fileResult{}, fmt.Errorf("%w: annotate needs TEI or EAD input", xmldoc.ErrUnknownType)
	}

	doc, err := xmldoc.Parse(bytes.NewReader(data))
	if err != nil {
		return fileResult{}, err
	}

	vocabName := cfg.Vocabulary
	if vocabName == "" {
		vocabName = types.Vocabulary(typ)
	}
	vocab, err := policy.For(vocabName, cfg.VIAF, cfg.GeoNames)
	if err != nil {
		return fileResult{}, err
	}

	if expr == "" {
		expr = xmldoc.DefaultRoots(typ)
	}
	roots, err := xmldoc.Select(doc, expr)
	if err != nil {
		return fileResult{}, err
	}

	log := logger.With("file", filepath.Base(path))
	opts := []annotate.Option{
		annotate.WithResolver(annotate.DBpedia(svc.dbpedia)),
		annotate.WithLogger(log),
	}
	if model != nil {
		opts = append(opts, annotate.WithSchema(model))
	}
	if cfg.TrackChanges {
		opts = append(opts, annotate.WithTrackChanges(cfg.Author))
	}
	a := annotate.New(vocab, opts...)

	res := fileResult{path: path, typ: typ, roots: len(roots)}
	for _, root := range roots {
		text := xmldoc.NormalizedText(root)
		if text == "" {
			continue
		}
		spans, err := svc.spotlight.Annotate(ctx, text)
		if err != nil {
			return res, err
		}
		n, err := a.Annotate(ctx, root, spans)
		if err != nil {
			return res, err
		}
		res.inserted += n
	}
	log.Info("annotated", "type", typ, "roots", len(roots), "inserted", res.inserted)

	var buf bytes.Buffer
	if err := xmldoc.Write(&buf, doc); err != nil {
		return res, fmt.Errorf("writing document: %w", err)
	}
	res.out = buf.Bytes()
	return res, nil
}

// writeResult writes r to stdout when output is "-" or empty, else into
// the output directory under the input's base name.
func writeResult(output string, r fileResult) error {
	if output == "" || output == "-" {
		_, err := os.Stdout.Write(r.out)
		return err
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	dest := filepath.Join(output, filepath.Base(r.path))
	if err := os.WriteFile(dest, r.out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
