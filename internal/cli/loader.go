package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sqlwhere/internal/compiler"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Filters   []compiler.FilterSpec // Sorted by name
	CUEValue  cue.Value             // The raw CUE value for additional processing
	FileCount int                   // Number of CUE files found
}

// Filter returns the filter with the given name.
func (r *LoadResult) Filter(name string) (compiler.FilterSpec, bool) {
	for _, f := range r.Filters {
		if f.Name == name {
			return f, true
		}
	}
	return compiler.FilterSpec{}, false
}

// Names returns the names of all loaded filters.
func (r *LoadResult) Names() []string {
	names := make([]string, len(r.Filters))
	for i, f := range r.Filters {
		names[i] = f.Name
	}
	return names
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads and compiles the CUE filter specs in a directory.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
//
// A nil result means the directory itself could not be loaded.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	// Check for load errors
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	// Build value from instance
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	// Extract filters
	filtersVal := value.LookupPath(cue.ParsePath("filter"))
	if filtersVal.Exists() {
		iter, iterErr := filtersVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating filters: %v", iterErr)})
			if mode == LoadModeFailFast {
				return result, errs
			}
		} else {
			for iter.Next() {
				spec, compileErr := compiler.CompileFilter(iter.Value())
				if compileErr != nil {
					loadErr := convertCompileError(compileErr, "filter."+iter.Label())
					errs = append(errs, loadErr)
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				result.Filters = append(result.Filters, *spec)
			}
		}
	}

	sort.Slice(result.Filters, func(i, j int) bool {
		return result.Filters[i].Name < result.Filters[j].Name
	})

	// Check if we found anything
	if len(result.Filters) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no filters found in specs"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
// The filter name is prefixed to the message so errors from different
// filters can be told apart.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Filter spec errors
	ErrCodeFilterTable       = "E101" // Missing or invalid table
	ErrCodeFilterDescription = "E102" // Invalid description
	ErrCodeFilterNotFound    = "E103" // Named filter does not exist

	// Expression errors
	ErrCodeInvalidWhere    = "E110" // Malformed where tree
	ErrCodeInvalidConstant = "E111" // Constant is not a scalar
	ErrCodeInvalidOperator = "E112" // Missing or empty binary operator
	ErrCodeUnsupported     = "E120" // Tree has no SQL lowering

	// Execution errors
	ErrCodeDBRequired  = "E130" // No database configured
	ErrCodeDBOpen      = "E131" // Database could not be opened
	ErrCodeQueryFailed = "E132" // Query execution failed

	// Harness errors
	ErrCodeTestFailed = "E140" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "table":
		return ErrCodeFilterTable
	case field == "description":
		return ErrCodeFilterDescription
	case strings.HasSuffix(field, ".op"):
		return ErrCodeInvalidOperator
	case strings.HasSuffix(field, ".constant"):
		return ErrCodeInvalidConstant
	case field == "where" || strings.HasPrefix(field, "where."):
		return ErrCodeInvalidWhere
	default:
		return ErrCodeGeneric
	}
}
