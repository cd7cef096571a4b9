package assets

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"talisman/internal/bundle"
	"talisman/internal/dat"
	"talisman/internal/fileutil"
	"talisman/internal/imaging"
)

// Index supplies the pipeline's table rows and raw file bytes. *index.Index
// satisfies it; tests substitute fakes.
type Index interface {
	BaseItemTypes(ctx context.Context) ([]dat.BaseItemType, error)
	UniqueStashLayouts(ctx context.Context) ([]dat.UniqueStashLayout, error)
	Words(ctx context.Context) ([]dat.Word, error)
	ItemVisualIdentities(ctx context.Context) ([]dat.ItemVisualIdentity, error)
	ReadByPath(ctx context.Context, path string) ([]byte, error)
}

type postprocessEntry struct {
	matcher   Matcher
	transform Transform
}

// Pipeline extracts selected item icons from a bundle into an output
// directory. Configure it with Select and Postprocess before Execute; the
// pipeline is treated as immutable while executing.
type Pipeline struct {
	index       Index
	out         string
	selectors   []Matcher
	postprocess []postprocessEntry
	reporter    Reporter
	strict      bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter injects the observer for skip/write events. Defaults to a
// no-op reporter.
func WithReporter(reporter Reporter) Option {
	return func(p *Pipeline) {
		if reporter != nil {
			p.reporter = reporter
		}
	}
}

// WithStrictPostprocess makes a failed postprocess transform abort the whole
// run instead of skipping the record.
func WithStrictPostprocess() Option {
	return func(p *Pipeline) {
		p.strict = true
	}
}

// New creates a pipeline writing into the out directory.
func New(index Index, out string, opts ...Option) *Pipeline {
	p := &Pipeline{
		index:    index,
		out:      out,
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select registers a selector. A record is extracted when at least one
// registered selector matches it.
func (p *Pipeline) Select(matcher Matcher) *Pipeline {
	p.selectors = append(p.selectors, matcher)
	return p
}

// Postprocess registers a transform applied to every selected record the
// matcher accepts. Transforms run in registration order; selection and
// postprocess matching are independent.
func (p *Pipeline) Postprocess(matcher Matcher, transform Transform) *Pipeline {
	p.postprocess = append(p.postprocess, postprocessEntry{matcher: matcher, transform: transform})
	return p
}

// tables holds the four required tables for one execution.
type tables struct {
	bases   []dat.BaseItemType
	uniques []dat.UniqueStashLayout
	words   []dat.Word
	vis     []dat.ItemVisualIdentity
}

// Execute runs the pipeline and returns the number of files written.
// Records are processed strictly in catalog order (base rows first, then
// unique rows, each in table order), so a filename collision is always won
// by the later record.
func (p *Pipeline) Execute(ctx context.Context) (int, error) {
	if err := checkOutDir(p.out); err != nil {
		return 0, err
	}

	tbl, err := p.readTables(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for file := range p.catalog(ctx, tbl) {
		if !p.selected(&file) {
			continue
		}
		written, err := p.process(ctx, tbl, &file)
		if err != nil {
			return total, err
		}
		if written {
			total++
		}
	}

	p.reporter.RunCompleted(ctx, total)
	return total, nil
}

func checkOutDir(out string) error {
	info, err := os.Stat(out)
	if err != nil {
		return fmt.Errorf("out path %q is not usable: %w", out, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("out path %q is not a directory", out)
	}
	return nil
}

func (p *Pipeline) readTables(ctx context.Context) (*tables, error) {
	tbl := &tables{}
	var err error
	if tbl.bases, err = p.index.BaseItemTypes(ctx); err != nil {
		return nil, err
	}
	if tbl.uniques, err = p.index.UniqueStashLayouts(ctx); err != nil {
		return nil, err
	}
	if tbl.words, err = p.index.Words(ctx); err != nil {
		return nil, err
	}
	if tbl.vis, err = p.index.ItemVisualIdentities(ctx); err != nil {
		return nil, err
	}
	return tbl, nil
}

// catalog yields the unified record sequence: base rows first, then unique
// rows. Unique rows derive their name through the Words table and their id
// through the ItemVisualIdentity table; either lookup may dangle, which
// skips the record with a diagnostic instead of aborting the run.
func (p *Pipeline) catalog(ctx context.Context, tbl *tables) iter.Seq[File] {
	return func(yield func(File) bool) {
		for _, base := range tbl.bases {
			file := File{
				Kind:           KindBase,
				ID:             base.ID,
				VisualIdentity: base.VisualIdentity,
				Name:           base.Name,
			}
			if !yield(file) {
				return
			}
		}

		for _, unique := range tbl.uniques {
			file := File{
				Kind:           KindUnique,
				VisualIdentity: unique.VisualIdentity,
			}
			word, ok := lookup(tbl.words, unique.Words)
			if !ok {
				p.reporter.RecordSkipped(ctx, &file, SkipMissingWord,
					fmt.Errorf("words row %d does not exist", unique.Words))
				continue
			}
			file.Name = word.Text

			vis, ok := lookup(tbl.vis, unique.VisualIdentity)
			if !ok {
				p.reporter.RecordSkipped(ctx, &file, SkipMissingVisualIdentity,
					fmt.Errorf("visual identity row %d does not exist", unique.VisualIdentity))
				continue
			}
			file.ID = vis.ID

			if !yield(file) {
				return
			}
		}
	}
}

func (p *Pipeline) selected(file *File) bool {
	for _, selector := range p.selectors {
		if selector.Matches(file) {
			return true
		}
	}
	return false
}

// process carries one selected record from resolution to the written file.
// It returns true when a file was written; an error aborts the whole run.
func (p *Pipeline) process(ctx context.Context, tbl *tables, file *File) (bool, error) {
	vis, ok := lookup(tbl.vis, file.VisualIdentity)
	if !ok {
		p.reporter.RecordSkipped(ctx, file, SkipMissingVisualIdentity,
			fmt.Errorf("visual identity row %d does not exist", file.VisualIdentity))
		return false, nil
	}

	if vis.IsAlternateArt {
		// Alternate art shares its name with the canonical art and would
		// overwrite it.
		p.reporter.RecordSkipped(ctx, file, SkipAlternateArt, nil)
		return false, nil
	}

	name, err := file.Name.Decode()
	if err != nil {
		p.reporter.RecordSkipped(ctx, file, SkipInvalidName, err)
		return false, nil
	}
	ddsFile, err := vis.DDSFile.Decode()
	if err != nil {
		p.reporter.RecordSkipped(ctx, file, SkipInvalidSourcePath, err)
		return false, nil
	}

	raw, err := p.index.ReadByPath(ctx, ddsFile)
	if err != nil {
		if errors.Is(err, bundle.ErrNotExist) {
			p.reporter.RecordSkipped(ctx, file, SkipMissingImage,
				fmt.Errorf("source image %q does not exist", ddsFile))
			return false, nil
		}
		return false, fmt.Errorf("read source image %q: %w", ddsFile, err)
	}

	img, err := imaging.Decode(raw)
	if err != nil {
		p.reporter.RecordSkipped(ctx, file, SkipImageDecode, err)
		return false, nil
	}

	for _, entry := range p.postprocess {
		if !entry.matcher.Matches(file) {
			continue
		}
		if err := entry.transform.Apply(img); err != nil {
			if p.strict {
				return false, fmt.Errorf("postprocess %q: %w", name, err)
			}
			p.reporter.RecordSkipped(ctx, file, SkipPostprocess, err)
			return false, nil
		}
	}

	encoded, err := img.EncodeWebP()
	if err != nil {
		return false, fmt.Errorf("encode %q: %w", name, err)
	}

	target := filepath.Join(p.out, name+".webp")
	if err := fileutil.WriteFileAtomic(target, encoded, 0o644); err != nil {
		return false, fmt.Errorf("write %q: %w", target, err)
	}

	p.reporter.RecordWritten(ctx, file, target)
	return true, nil
}

// lookup existence-checks a numeric foreign key against a row slice. The
// source tables carry no referential integrity, so every reference resolves
// through here.
func lookup[T any](rows []T, key uint64) (T, bool) {
	if key >= uint64(len(rows)) {
		var zero T
		return zero, false
	}
	return rows[key], true
}

type nopReporter struct{}

func (nopReporter) RecordSkipped(context.Context, *File, SkipReason, error) {}
func (nopReporter) RecordWritten(context.Context, *File, string)            {}
func (nopReporter) RunCompleted(context.Context, int)                       {}
