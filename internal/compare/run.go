package compare

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pixelgate/pixelgate/internal/storage"
)

// RunOptions configure a directory-level comparison.
type RunOptions struct {
	// Options are the engine defaults for every artifact.
	Options
	// Thresholds overrides the default threshold per artifact filename
	// (per-case threshold overrides flow in here).
	Thresholds map[string]float64
}

// Run reconciles the current and base artifact listings and compares every
// pair. Files present in only one listing are classified without invoking
// the engine; engine failures are isolated per artifact.
func Run(log logrus.FieldLogger, store storage.Store, engine Engine, opts RunOptions) ([]*Result, error) {
	log = log.WithField("component", "compare_run")

	currentNames, err := store.List(storage.KindCurrent)
	if err != nil {
		return nil, fmt.Errorf("listing current artifacts: %w", err)
	}

	baseNames, err := store.List(storage.KindBase)
	if err != nil {
		return nil, fmt.Errorf("listing base artifacts: %w", err)
	}

	inCurrent := toSet(currentNames)
	inBase := toSet(baseNames)

	union := make([]string, 0, len(inCurrent)+len(inBase))
	for name := range inCurrent {
		union = append(union, name)
	}
	for name := range inBase {
		if !inCurrent[name] {
			union = append(union, name)
		}
	}
	sort.Strings(union)

	results := make([]*Result, 0, len(union))
	for _, name := range union {
		id := strings.TrimSuffix(name, filepath.Ext(name))

		switch {
		case !inBase[name]:
			results = append(results, &Result{ID: id, Reason: ReasonMissingBase})
		case !inCurrent[name]:
			results = append(results, &Result{ID: id, Reason: ReasonMissingCurrent})
		default:
			engineOpts := opts.Options
			if threshold, ok := opts.Thresholds[name]; ok {
				engineOpts.Threshold = threshold
			}

			result, err := engine.Compare(store, name, engineOpts)
			if err != nil {
				log.WithError(err).WithField("artifact", name).Error("comparison failed")
				result = &Result{ID: id, Reason: ReasonError, Error: err.Error()}
			}

			results = append(results, result)
		}
	}

	log.WithFields(logrus.Fields{
		"current": len(currentNames),
		"base":    len(baseNames),
		"results": len(results),
	}).Debug("comparison run complete")

	return results, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
