// Command fetchcounties downloads Census TIGER/Line county boundaries and writes the
// Northern Virginia county layer the server loads at startup.
package main

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"aquagrid/internal/config"
	"aquagrid/internal/logger"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"
)

const (
	virginiaFIPS    = "51"
	downloadTimeout = 5 * time.Minute
)

// novaCounty is one row of the county table: Census NAMELSAD to our schema.
type novaCounty struct {
	ID                 string
	TotalWithdrawalGPD float64
	AreaSqMi           float64
}

var novaCounties = map[string]novaCounty{
	"Fairfax County":        {ID: "fairfax", TotalWithdrawalGPD: 120_000_000, AreaSqMi: 395},
	"Loudoun County":        {ID: "loudoun", TotalWithdrawalGPD: 32_000_000, AreaSqMi: 520},
	"Prince William County": {ID: "prince_william", TotalWithdrawalGPD: 45_000_000, AreaSqMi: 348},
}

// shapeAllowlist limits what is pulled out of the archive.
var shapeAllowlist = []string{".shp", ".shx", ".dbf", ".prj", ".cpg"}

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	defer logr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr.Logger); err != nil {
		logr.Fatal("fetch counties failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	tmp, err := os.MkdirTemp("", "tiger-county-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	zipPath := filepath.Join(tmp, "county.zip")
	logr.Info("downloading county boundaries", zap.String("url", cfg.CensusCountyURL))
	if err := download(ctx, cfg.CensusCountyURL, zipPath); err != nil {
		return err
	}

	shpPath, err := extractShapefile(zipPath, tmp)
	if err != nil {
		return err
	}

	fc, err := readCounties(shpPath)
	if err != nil {
		return err
	}

	out, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode county layer: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CountiesPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(cfg.CountiesPath, out, 0o644); err != nil {
		return fmt.Errorf("write county layer: %w", err)
	}

	logr.Info("county layer written", zap.String("path", cfg.CountiesPath), zap.Int("features", len(fc.Features)))
	return nil
}

func download(ctx context.Context, url, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	return f.Close()
}

// extractShapefile unpacks the shapefile members of the archive into dir and returns
// the path of the .shp file.
func extractShapefile(zipPath, dir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	var shpPath string
	for _, zf := range zr.File {
		name := filepath.Base(zf.Name)
		ext := strings.ToLower(filepath.Ext(name))
		if zf.FileInfo().IsDir() || !slices.Contains(shapeAllowlist, ext) {
			continue
		}
		dst := filepath.Join(dir, name)
		if err := extractFile(zf, dst); err != nil {
			return "", err
		}
		if ext == ".shp" {
			shpPath = dst
		}
	}
	if shpPath == "" {
		return "", errors.New("archive contains no .shp file")
	}
	return shpPath, nil
}

func extractFile(zf *zip.File, dst string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer rc.Close()

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("extract %s: %w", zf.Name, err)
	}
	return f.Close()
}

func readCounties(shpPath string) (*geojson.FeatureCollection, error) {
	dec, err := shp.NewDecoder(shpPath)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer dec.Close()

	var rows []countyRow
	for {
		g, fields, more := dec.DecodeRowFields("STATEFP", "NAMELSAD")
		if !more {
			break
		}
		rows = append(rows, countyRow{StateFP: fields["STATEFP"], Name: fields["NAMELSAD"], Geometry: g})
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("decode shapefile: %w", err)
	}
	return buildCollection(rows)
}

type countyRow struct {
	StateFP  string
	Name     string
	Geometry geom.Geom
}

// buildCollection keeps the Northern Virginia rows and fails unless every table entry
// was found exactly once.
func buildCollection(rows []countyRow) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	var names []string

	for _, row := range rows {
		if strings.TrimSpace(row.StateFP) != virginiaFIPS {
			continue
		}
		name := strings.TrimSpace(row.Name)
		county, ok := novaCounties[name]
		if !ok {
			continue
		}
		mp, err := toMultiPolygon(row.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		f := geojson.NewFeature(mp)
		f.Properties["county_id"] = county.ID
		f.Properties["name"] = name
		f.Properties["total_withdrawal_gpd"] = county.TotalWithdrawalGPD
		f.Properties["area_sq_mi"] = county.AreaSqMi
		fc.Append(f)
		names = append(names, name)
	}

	if len(fc.Features) != len(novaCounties) {
		return nil, fmt.Errorf("expected %d counties, got %d: %v", len(novaCounties), len(fc.Features), names)
	}
	return fc, nil
}

// toMultiPolygon regroups shapefile rings into GeoJSON polygons. Shapefile outer rings run
// clockwise and holes counter-clockwise; GeoJSON wants the reverse.
func toMultiPolygon(g geom.Geom) (orb.MultiPolygon, error) {
	var rings [][]geom.Point
	switch t := g.(type) {
	case geom.Polygon:
		for _, r := range t {
			rings = append(rings, r)
		}
	case geom.MultiPolygon:
		for _, p := range t {
			for _, r := range p {
				rings = append(rings, r)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported geometry %T", g)
	}

	var outers []orb.Ring
	var holes []orb.Ring
	for _, r := range rings {
		ring := closeRing(toRing(r))
		if len(ring) < 4 {
			continue
		}
		if ring.Orientation() == orb.CW {
			ring.Reverse()
			outers = append(outers, ring)
		} else {
			ring.Reverse()
			holes = append(holes, ring)
		}
	}
	if len(outers) == 0 {
		return nil, errors.New("no outer rings")
	}

	mp := make(orb.MultiPolygon, len(outers))
	for i, outer := range outers {
		mp[i] = orb.Polygon{outer}
	}
	for _, hole := range holes {
		for i := range mp {
			if planar.RingContains(mp[i][0], hole[0]) {
				mp[i] = append(mp[i], hole)
				break
			}
		}
	}
	return mp, nil
}

func toRing(pts []geom.Point) orb.Ring {
	ring := make(orb.Ring, len(pts))
	for i, p := range pts {
		ring[i] = orb.Point{p.X, p.Y}
	}
	return ring
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}
