package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"aquagrid/internal/config"
	"aquagrid/internal/models"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var emptyFeatureCollection = json.RawMessage(`{"type":"FeatureCollection","features":[]}`)

// DatasetOptions locates the static inputs loaded at startup.
type DatasetOptions struct {
	CountiesPath    string
	UtilitiesPath   string
	DataCentersPath string
	LedgerPath      string
	UtilityLayer    bool
}

func DatasetOptionsFromConfig(cfg *config.Config) DatasetOptions {
	return DatasetOptions{
		CountiesPath:    cfg.CountiesPath,
		UtilitiesPath:   cfg.UtilitiesPath,
		DataCentersPath: cfg.DataCentersPath,
		LedgerPath:      cfg.LedgerPath,
		UtilityLayer:    cfg.UtilityLayer,
	}
}

// Dataset is everything simulations read. It is built once before serving and never
// mutated afterwards, so concurrent requests share it without locking.
type Dataset struct {
	Counties  []models.CountyRegion
	Utilities []models.UtilityRegion
	Baselines map[string]models.UtilityBaseline

	CountiesGeoJSON    json.RawMessage
	UtilitiesGeoJSON   json.RawMessage
	DataCentersGeoJSON json.RawMessage

	Ledger   LedgerReport
	LoadedAt time.Time
}

// LoadDataset reads the county layer (required), the utility layer, data-center points and
// usage ledger (all optional), then derives utility baselines. Missing optional inputs degrade
// the dataset to county-only mode instead of failing.
func LoadDataset(opts DatasetOptions, clock clockwork.Clock, logr *zap.Logger) (*Dataset, error) {
	countiesRaw, err := os.ReadFile(opts.CountiesPath)
	if err != nil {
		return nil, fmt.Errorf("read county layer: %w", err)
	}

	var utilitiesRaw []byte
	if opts.UtilityLayer {
		utilitiesRaw = readOptional(opts.UtilitiesPath, "utility layer", logr)
	} else {
		logr.Info("utility layer disabled; simulations run county-only")
	}

	ds, err := NewDataset(countiesRaw, utilitiesRaw, logr)
	if err != nil {
		return nil, err
	}

	if dc := readOptional(opts.DataCentersPath, "data-center layer", logr); dc != nil {
		if fc, err := geojson.UnmarshalFeatureCollection(dc); err != nil {
			logr.Warn("data-center layer is not a FeatureCollection; serving empty layer", zap.Error(err))
		} else {
			ds.DataCentersGeoJSON = dc
			logr.Info("data-center layer loaded", zap.Int("features", len(fc.Features)))
		}
	}

	if len(ds.Utilities) > 0 {
		ds.attachLedger(opts.LedgerPath, logr)
	}

	ds.LoadedAt = clock.Now()
	logr.Info("dataset loaded",
		zap.Int("counties", len(ds.Counties)),
		zap.Int("utilities", len(ds.Utilities)),
		zap.Int("baselines", len(ds.Baselines)),
	)
	return ds, nil
}

// NewDataset builds a dataset from in-memory layers. utilitiesRaw may be nil.
func NewDataset(countiesRaw, utilitiesRaw []byte, logr *zap.Logger) (*Dataset, error) {
	counties, err := LoadCountyLayer(countiesRaw, logr)
	if err != nil {
		return nil, err
	}
	if len(counties) == 0 {
		return nil, errors.New("county layer has no usable features")
	}

	ds := &Dataset{
		Counties:           counties,
		Baselines:          make(map[string]models.UtilityBaseline),
		CountiesGeoJSON:    countiesRaw,
		UtilitiesGeoJSON:   emptyFeatureCollection,
		DataCentersGeoJSON: emptyFeatureCollection,
		Ledger:             newLedgerReport(),
	}

	if utilitiesRaw != nil {
		utilities, err := LoadUtilityLayer(utilitiesRaw, logr)
		if err != nil {
			logr.Warn("utility layer unusable; simulations run county-only", zap.Error(err))
		} else {
			ds.Utilities = utilities
			ds.UtilitiesGeoJSON = utilitiesRaw
		}
	}
	return ds, nil
}

// ApplyLedger derives utility baselines from parsed usage records.
func (ds *Dataset) ApplyLedger(records []models.UsageRecord, report LedgerReport) {
	baselines, unmatched := BuildBaselines(ds.Utilities, records)
	if unmatched > 0 {
		report.Discarded[DiscardUnmatched] += unmatched
	}
	ds.Baselines = baselines
	ds.Ledger = report
}

func (ds *Dataset) attachLedger(path string, logr *zap.Logger) {
	records, report, err := ReadLedger(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logr.Warn("usage ledger not found; no utility baselines", zap.String("path", path))
		} else {
			logr.Error("usage ledger unreadable; no utility baselines", zap.String("path", path), zap.Error(err))
		}
		return
	}

	ds.ApplyLedger(records, report)
	logr.Info("usage ledger parsed",
		zap.String("encoding", ds.Ledger.Encoding),
		zap.Int("rows", ds.Ledger.RowsRead),
		zap.Int("accepted", ds.Ledger.Accepted),
		zap.Any("discarded", ds.Ledger.Discarded),
	)
}

// readOptional returns the file contents, or nil when the file is absent or unreadable.
func readOptional(path, what string, logr *zap.Logger) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logr.Info(what+" not found", zap.String("path", path))
		} else {
			logr.Warn(what+" unreadable", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	return data
}
