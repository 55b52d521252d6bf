package extraction

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"

	"sparams/internal/models"
	"sparams/pkg/preprocess"
	"sparams/pkg/spectral"
)

// DefaultM is the angular resolution used when none is configured
const DefaultM = 36

// Params holds the extraction settings shared by every surface of a batch
type Params struct {
	// M is the number of angular samples of the spectrum; the radial
	// profile gets M/2 samples. Must be even and at least 2.
	M int

	// NumWorkers bounds how many surfaces are processed at once.
	// Zero or less means one worker per CPU.
	NumWorkers int

	// DetrendOrder selects the trend surface removed before analysis
	// (preprocess.Plane or preprocess.Quadratic)
	DetrendOrder int

	// Interpolator builds the spectrum interpolator; nil means bilinear
	Interpolator spectral.InterpolatorFactory

	// UseRaw evaluates the statistical groups on the raw heights
	UseRaw bool

	// EnableAllBands reports the 50-95% height band instead of its
	// placeholder
	EnableAllBands bool

	// FillMissing reconstructs NaN and ±Inf samples by kriging from their
	// measured neighbours before anything else is computed. When false such
	// samples flow through and the affected parameters fall back to the
	// sentinel.
	FillMissing bool
}

// DefaultParams returns the settings used by the package level helpers
func DefaultParams() *Params {
	return &Params{
		M:            DefaultM,
		NumWorkers:   runtime.NumCPU(),
		DetrendOrder: preprocess.Plane,
		Interpolator: spectral.NewBilinear,
	}
}

// ProgressCallback receives the number of finished surfaces after each one
// completes. It is called from a single goroutine with a strictly
// increasing count.
type ProgressCallback func(completed, total int)

// CacheHook observes the cache of every successfully built surface, for
// example to dump intermediary artifacts. index is the surface's position
// in the batch (0 for ExtractOne). It runs on worker goroutines and must be
// safe for concurrent use; it must not modify the cache.
type CacheHook func(index int, hm models.HeightMap, cache *Cache)

// Result is one row of a batch. Exactly one of Row and Err is set.
type Result struct {
	Index int
	Name  string
	Row   Row
	Err   error
}

// Failed reports whether the surface could not be processed
func (r Result) Failed() bool { return r.Err != nil }

// Table is the output of a batch, one Result per input surface in input
// order
type Table struct {
	Names []string
	Rows  []Result
}

// Failures returns the rows that carry an error
func (t Table) Failures() []Result {
	var failed []Result
	for _, r := range t.Rows {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Extractor turns height maps into parameter rows. One Extractor may be
// used for many batches; it holds no per-surface state.
type Extractor struct {
	params   *Params
	registry *Registry
	logger   *log.Logger

	progress ProgressCallback
	hook     CacheHook
}

// NewExtractor creates an extractor over the default registry. A nil
// logger discards output.
func NewExtractor(params *Params, logger *log.Logger) *Extractor {
	if params == nil {
		params = DefaultParams()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Extractor{
		params:   params,
		registry: DefaultRegistry,
		logger:   logger,
	}
}

// SetProgressCallback sets the function notified as surfaces finish
func (e *Extractor) SetProgressCallback(callback ProgressCallback) {
	e.progress = callback
}

// SetCacheHook sets the function that observes every built cache
func (e *Extractor) SetCacheHook(hook CacheHook) {
	e.hook = hook
}

func (e *Extractor) options() Options {
	opts := Options{UseRaw: e.params.UseRaw}
	if !e.params.EnableAllBands {
		opts.Disabled = []string{DisabledBand}
	}
	return opts
}

// ExtractOne validates hm, builds its cache and evaluates the full
// parameter row. The spacing is taken from hm.Dx and hm.Dy.
func (e *Extractor) ExtractOne(hm models.HeightMap) (Row, error) {
	return e.extract(0, hm)
}

func (e *Extractor) extract(index int, hm models.HeightMap) (Row, error) {
	if err := validateSpacing(hm.Dx, hm.Dy); err != nil {
		return nil, err
	}
	if err := validateGrid(hm, e.params.M); err != nil {
		return nil, err
	}

	if e.params.FillMissing {
		filled, n, err := preprocess.FillMissing(hm.Data, hm.Dim, preprocess.DefaultFillParams())
		if err != nil {
			return nil, invalid("heightMap", "%v", err)
		}
		if n > 0 {
			e.logger.Printf("%s: filled %d missing samples", hm.Name, n)
			hm.Data = filled
		}
	}

	cache, err := BuildCache(hm, e.params.M,
		WithInterpolator(e.params.Interpolator),
		WithDetrendOrder(e.params.DetrendOrder))
	if err != nil {
		return nil, err
	}
	if e.hook != nil {
		e.hook(index, hm, cache)
	}

	return e.registry.Evaluate(hm, hm.Dx, hm.Dy, e.params.M, cache, e.options())
}

// ExtractMany processes every surface on a fixed pool of workers. Each
// surface gets its own cache. Rows come back in input order whatever the
// completion order, and a failing surface (including one that panics) is
// recorded on its own row without affecting the others.
//
// ctx is consulted only before a surface is started: once cancelled, the
// remaining surfaces are recorded with ctx.Err() while surfaces already in
// progress run to completion.
func (e *Extractor) ExtractMany(ctx context.Context, surfaces []models.HeightMap) Table {
	total := len(surfaces)
	table := Table{
		Names: e.registry.Names(),
		Rows:  make([]Result, total),
	}
	if total == 0 {
		return table
	}

	numWorkers := e.params.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > total {
		numWorkers = total
	}
	e.logger.Printf("extracting %d surfaces with %d workers (M=%d)", total, numWorkers, e.params.M)

	jobs := make(chan int)
	resultChan := make(chan Result)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				resultChan <- e.extractIndexed(i, surfaces[i])
			}
		}()
	}

	// Dispatch; skipped surfaces go straight to the collector
	go func() {
		defer close(jobs)
		for i := range surfaces {
			if err := ctx.Err(); err != nil {
				resultChan <- Result{Index: i, Name: surfaces[i].Name, Err: err}
				continue
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				resultChan <- Result{Index: i, Name: surfaces[i].Name, Err: ctx.Err()}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	completed := 0
	for res := range resultChan {
		table.Rows[res.Index] = res
		completed++

		if res.Err != nil {
			e.logger.Printf("surface %d (%s) failed: %v", res.Index, res.Name, res.Err)
		}
		if e.progress != nil {
			e.progress(completed, total)
		}
	}

	return table
}

func (e *Extractor) extractIndexed(index int, hm models.HeightMap) (res Result) {
	res = Result{Index: index, Name: hm.Name}
	defer func() {
		if r := recover(); r != nil {
			res.Row = nil
			res.Err = fmt.Errorf("extraction of surface %d panicked: %v", index, r)
		}
	}()

	res.Row, res.Err = e.extract(index, hm)
	return res
}

// ExtractOne computes the parameter row of a single height map with the
// default settings and the given spacing and resolution
func ExtractOne(hm models.HeightMap, dx, dy float64, m int) (Row, error) {
	params := DefaultParams()
	params.M = m
	hm.Dx, hm.Dy = dx, dy
	return NewExtractor(params, nil).ExtractOne(hm)
}

// ExtractMany computes one row per surface with the default settings. The
// spacing of each surface is taken from its Dx and Dy fields.
func ExtractMany(surfaces []models.HeightMap, m int) Table {
	params := DefaultParams()
	params.M = m
	return NewExtractor(params, nil).ExtractMany(context.Background(), surfaces)
}
