package app

import (
	"context"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Validate loads and validates every patch file of every modlet under the
// root without needing any base document. Files are independent, so loading
// runs fully parallel; each failure is isolated to its file.
func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	modletRoot := strings.TrimSpace(req.ModletRoot)
	if modletRoot == "" {
		return ValidateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("modlet root directory is required")
	}
	modlets, err := s.Modlets.Discover(modletRoot)
	if err != nil {
		return ValidateResult{}, err
	}
	for _, modlet := range modlets {
		assert.NotEmpty(ctx, modlet.Descriptor.Name, "discovered modlet must carry a name")
	}

	loaded, failures := s.loadPatchDocuments(ctx, modlets, jobCount(req.Jobs))
	result := ValidateResult{
		Modlets:  len(modlets),
		Files:    len(loaded) + len(failures),
		Failures: failures,
	}
	for _, failure := range failures {
		log.Error().
			Str("modlet", failure.Source.Modlet).
			Str("file", failure.Source.File).
			Str("reason", failure.Reason).
			Msg("patch file failed validation")
	}
	log.Info().
		Int("modlets", result.Modlets).
		Int("files", result.Files).
		Int("failures", len(result.Failures)).
		Msg("validation complete")
	return result, nil
}
