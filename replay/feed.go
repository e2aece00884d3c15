package replay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/ais-shipdomain/ais"
	"github.com/theoremus-urban-solutions/ais-shipdomain/geo"
)

// unparsedTime orders reports whose timestamp cannot be read.
var unparsedTime = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02-01-2006 15:04:05",
	"01/02/2006 15:04:05",
}

// Feed is the ordered list of report lines served to every client.
type Feed struct {
	Lines []string
}

// Len returns the number of lines.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Lines)
}

// LoadOptions names the inputs of Load. Paths may be local files or
// http(s) URLs.
type LoadOptions struct {
	TracksPath  string
	LengthsPath string
	Bounds      geo.Bounds
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Load reads the length table and the track file and builds a feed. A
// missing or unreadable length table only loses lengths; a track file error
// is returned.
func Load(ctx context.Context, opts LoadOptions) (*Feed, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	f := newFetcher(opts.HTTPClient)

	lengths := map[string]float64{}
	if opts.LengthsPath != "" {
		if l, err := readLengths(ctx, f, opts.LengthsPath); err != nil {
			log.Warn("length table not loaded", "path", opts.LengthsPath, "error", err)
		} else {
			lengths = l
			log.Info("length table loaded", "path", opts.LengthsPath, "vessels", len(lengths))
		}
	}

	rc, err := f.open(ctx, opts.TracksPath)
	if err != nil {
		return &Feed{}, fmt.Errorf("replay: tracks: %w", err)
	}
	defer rc.Close()
	records, skipped, err := ais.ReadTracks(rc)
	if err != nil {
		return &Feed{}, fmt.Errorf("replay: tracks %s: %w", opts.TracksPath, err)
	}

	feed := Build(records, lengths, opts.Bounds)
	log.Info("track file loaded", "path", opts.TracksPath, "rows", len(records), "skipped", skipped, "lines", feed.Len())
	return feed, nil
}

func readLengths(ctx context.Context, f *fetcher, path string) (map[string]float64, error) {
	rc, err := f.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ais.ReadLengths(rc)
}

// Build keeps moving vessels inside bounds, attaches lengths (0 when unknown)
// and orders the lines by timestamp. Records with equal timestamps keep file
// order.
func Build(records []ais.TrackRecord, lengths map[string]float64, bounds geo.Bounds) *Feed {
	type keyed struct {
		at   time.Time
		line string
	}
	kept := make([]keyed, 0, len(records))
	for _, rec := range records {
		if !bounds.Contains(rec.Lng, rec.Lat) || !(rec.SOG > 0) {
			continue
		}
		r := rec.Report(lengths[rec.MMSI])
		kept = append(kept, keyed{at: SortTime(rec.TS), line: r.Line()})
	}
	slices.SortStableFunc(kept, func(a, b keyed) int { return a.at.Compare(b.at) })

	feed := &Feed{Lines: make([]string, len(kept))}
	for i, k := range kept {
		feed.Lines[i] = k.line
	}
	return feed
}

// SortTime reads a track timestamp in one of the known layouts or as Unix
// seconds. Anything else maps to 1900-01-01, which sorts first.
func SortTime(ts string) time.Time {
	ts = strings.TrimSpace(ts)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	if secs, err := strconv.ParseFloat(ts, 64); err == nil && geo.Finite(secs) {
		whole := int64(secs)
		return time.Unix(whole, int64((secs-float64(whole))*1e9)).UTC()
	}
	return unparsedTime
}
