package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"modlet-tools/internal/core"
	"modlet-tools/internal/policies"
	"modlet-tools/internal/ports"
	"modlet-tools/internal/types"
)

// Merge loads every modlet's patch files, groups them by target base
// document, and merges each base document on a worker pool. Base documents
// are independent, so merges run in parallel across documents while staying
// strictly sequential within one document. A failure in one document never
// stops its siblings.
func (s Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	configDir := strings.TrimSpace(req.ConfigDir)
	if configDir == "" {
		return MergeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("game config directory is required")
	}
	modletRoot := strings.TrimSpace(req.ModletRoot)
	if modletRoot == "" {
		return MergeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("modlet root directory is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return MergeResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	policy, err := policies.ParseMergePolicy(req.Policy)
	if err != nil {
		return MergeResult{}, err
	}

	started := s.Clock()
	modlets, err := s.Modlets.Discover(modletRoot)
	if err != nil {
		return MergeResult{}, err
	}
	configs, err := s.GameConfig.ListConfigs(configDir)
	if err != nil {
		return MergeResult{}, err
	}

	loaded, loadFailures := s.loadPatchDocuments(ctx, modlets, jobCount(req.Jobs))

	// Group per target, preserving modlet priority order then file order.
	byTarget := map[string][]types.PatchDocument{}
	var unmatched []string
	seenUnmatched := map[string]bool{}
	for _, doc := range loaded {
		target := doc.Source.File
		if _, ok := configs[target]; !ok {
			if !seenUnmatched[target] {
				seenUnmatched[target] = true
				unmatched = append(unmatched, target)
			}
			continue
		}
		byTarget[target] = append(byTarget[target], doc)
	}
	sort.Strings(unmatched)
	for _, target := range unmatched {
		log.Warn().Str("target", target).Msg("no base document for patch target")
	}

	targets := make([]string, 0, len(byTarget))
	for target := range byTarget {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	output := s.NewOutput(outputDir)
	reports := make([]types.MergeReport, len(targets))
	failures := make([]*DocumentFailure, len(targets))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for worker := 0; worker < jobCount(req.Jobs); worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				target := targets[index]
				reports[index], failures[index] = s.mergeOne(
					configs[target], target, byTarget[target], policy, output)
			}
		}()
	}
	for index := range targets {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	result := MergeResult{
		Modlets:      len(modlets),
		Documents:    len(targets),
		Reports:      reports,
		LoadFailures: loadFailures,
		Unmatched:    unmatched,
	}
	for _, failure := range failures {
		if failure != nil {
			result.DocFailures = append(result.DocFailures, *failure)
		}
	}

	if err := s.NewReport(req.ReportYAML).Summarize(reports); err != nil {
		return MergeResult{}, err
	}
	log.Info().
		Int("modlets", result.Modlets).
		Int("documents", result.Documents).
		Int("load_failures", len(result.LoadFailures)).
		Int("doc_failures", len(result.DocFailures)).
		Dur("elapsed", s.Clock().Sub(started)).
		Msg("merge complete")
	return result, nil
}

// mergeOne runs a full merge for one base document: read, parse, apply all
// patch documents sequentially, serialize, write.
func (s Service) mergeOne(path, target string, docs []types.PatchDocument, policy policies.MergePolicy, output ports.OutputPort) (types.MergeReport, *DocumentFailure) {
	fail := func(reason string) (types.MergeReport, *DocumentFailure) {
		return types.MergeReport{BaseDocument: target, Aborted: true},
			&DocumentFailure{BaseDocument: target, Reason: reason}
	}
	data, err := s.GameConfig.ReadConfig(path)
	if err != nil {
		return fail(err.Error())
	}
	base, err := core.ParseDocument(data)
	if err != nil {
		return fail(fmt.Sprintf("base document is not well-formed: %s", err))
	}
	report, mergeErr := core.Merge(base, target, docs, policy)
	if mergeErr != nil {
		return report, &DocumentFailure{BaseDocument: target, Reason: mergeErr.Error()}
	}
	merged, err := base.Serialize()
	if err != nil {
		return fail(err.Error())
	}
	if err := output.WriteDocument(target, merged); err != nil {
		return report, &DocumentFailure{BaseDocument: target, Reason: err.Error()}
	}
	return report, nil
}

// loadPatchDocuments parses every patch file of every modlet on a worker
// pool. Loading shares no state beyond the read-only input bytes, so it is
// safe to run fully parallel; document order is restored from the input
// ordering afterwards. A parse failure isolates that one file.
func (s Service) loadPatchDocuments(ctx context.Context, modlets []types.Modlet, workers int) ([]types.PatchDocument, []LoadFailure) {
	type loadJob struct {
		source types.PatchSource
		file   types.PatchFile
	}
	var flat []loadJob
	for _, modlet := range modlets {
		for _, patch := range modlet.Patches {
			flat = append(flat, loadJob{
				source: types.PatchSource{Modlet: modlet.Descriptor.Name, File: patch.Target},
				file:   patch,
			})
		}
	}

	docs := make([]*types.PatchDocument, len(flat))
	errs := make([]error, len(flat))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				if ctx.Err() != nil {
					errs[index] = ctx.Err()
					continue
				}
				job := flat[index]
				data, err := s.Modlets.ReadPatch(job.file)
				if err != nil {
					errs[index] = err
					continue
				}
				doc, err := core.LoadPatch(data, job.source)
				if err != nil {
					errs[index] = err
					continue
				}
				docs[index] = &doc
			}
		}()
	}
	for index := range flat {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	var loaded []types.PatchDocument
	var failures []LoadFailure
	for index := range flat {
		if errs[index] != nil {
			failures = append(failures, LoadFailure{
				Source: flat[index].source,
				Reason: errs[index].Error(),
			})
			continue
		}
		loaded = append(loaded, *docs[index])
	}
	return loaded, failures
}

func jobCount(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.NumCPU()
}
