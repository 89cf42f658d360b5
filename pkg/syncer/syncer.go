package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kesav2003/dns-czds-sync/pkg/czds"
	"github.com/kesav2003/dns-czds-sync/pkg/db"
	"github.com/kesav2003/dns-czds-sync/pkg/zonefile"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/net/idna"
)

const (
	DefaultMaxZones  = 10
	DefaultBatchSize = 5000
)

type Options struct {
	// MaxZones caps how many approved zones are processed per run. Ignored
	// when Allowlist is set.
	MaxZones int

	// BatchSize is the number of record rows per bulk insert.
	BatchSize int

	// Allowlist restricts the run to these TLDs (case-insensitive; Unicode
	// labels are converted to their punycode form). Takes precedence over
	// MaxZones.
	Allowlist []string

	// WorkDir is the scratch root for downloads. Empty means a fresh temp
	// directory, removed when the run finishes.
	WorkDir string
}

type Syncer interface {
	// Run drives one end-to-end sync. It returns an error only when the
	// approved-zone listing fails; individual zone failures are logged and
	// skipped.
	Run(ctx context.Context) error

	// SyncZone replaces the stored records for one TLD with the contents of
	// the zone file at path, then touches the zone's sync timestamp. It
	// returns the number of rows inserted.
	SyncZone(ctx context.Context, tld, path string) (int64, error)
}

type syncer struct {
	log    *logrus.Entry
	client czds.Client
	db     db.Database
	opts   Options
}

func New(log *logrus.Entry, client czds.Client, database db.Database, opts Options) Syncer {
	if opts.MaxZones <= 0 {
		opts.MaxZones = DefaultMaxZones
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	return &syncer{
		log:    log,
		client: client,
		db:     database,
		opts:   opts,
	}
}

type zoneRef struct {
	link string
	tld  string
}

func (s *syncer) Run(ctx context.Context) error {
	links, err := s.client.ApprovedZoneLinks(ctx)
	if err != nil {
		return fmt.Errorf("listing approved zones: %w", err)
	}
	if len(links) == 0 {
		s.log.Info("no zone files approved for this account")
		return nil
	}

	zones := selectZones(links, s.opts.Allowlist, s.opts.MaxZones)
	if len(zones) == 0 {
		s.log.Info("no zones to process")
		return nil
	}

	workDir := s.opts.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "czds_sync_")
		if err != nil {
			return err
		}
		defer os.RemoveAll(workDir)
	}

	for i, zone := range zones {
		log := s.log.WithFields(logrus.Fields{
			"tld":  zone.tld,
			"zone": fmt.Sprintf("%d/%d", i+1, len(zones)),
		})
		log.Info("syncing zone")

		zoneDir := filepath.Join(workDir, zone.tld)
		if err := os.MkdirAll(zoneDir, 0o755); err != nil {
			log.WithError(err).Error("unable to create scratch directory")
			continue
		}

		path, err := s.client.DownloadZone(ctx, zone.link, zoneDir)
		if err != nil {
			log.WithError(err).Error("download failed")
			continue
		}

		count, err := s.SyncZone(ctx, zone.tld, path)
		if err != nil {
			log.WithError(err).Error("sync failed")
			continue
		}
		log.WithField("records", count).Info("zone synced")
	}

	s.log.Info("done")
	return nil
}

func (s *syncer) SyncZone(ctx context.Context, tld, path string) (int64, error) {
	// The delete commits before any insert so old and new record sets never
	// coexist. Batches commit independently: a failure partway leaves the
	// earlier batches in place and the caller moves on to the next zone.
	deleted, err := s.db.DeleteZoneRecords(tld)
	if err != nil {
		return 0, fmt.Errorf("deleting records for %s: %w", tld, err)
	}
	s.log.WithFields(logrus.Fields{"tld": tld, "deleted": deleted}).Debug("cleared previous records")

	f, err := zonefile.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening zone file for %s: %w", tld, err)
	}
	defer f.Close()

	var (
		inserted int64
		serial   *int64
		batch    = make([]db.Record, 0, s.opts.BatchSize)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.db.InsertRecords(batch); err != nil {
			return fmt.Errorf("inserting batch for %s: %w", tld, err)
		}
		inserted += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	scanner := zonefile.NewScanner(f)
	for scanner.Scan() {
		rec := scanner.Record()

		if serial == nil && rec.Type != nil && *rec.Type == "SOA" && rec.RData != nil {
			if n, ok := zonefile.SOASerial(*rec.RData); ok {
				serial = &n
			}
		}

		batch = append(batch, db.Record{
			TLD:   tld,
			Owner: rec.Owner,
			TTL:   rec.TTL,
			Class: rec.Class,
			Type:  rec.Type,
			RData: rec.RData,
		})
		if len(batch) >= s.opts.BatchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return inserted, fmt.Errorf("reading zone file for %s: %w", tld, err)
	}
	if err := flush(); err != nil {
		return inserted, err
	}

	if err := s.db.UpsertZone(tld, serial); err != nil {
		return inserted, fmt.Errorf("updating zone %s: %w", tld, err)
	}

	return inserted, nil
}

// selectZones applies the allowlist, or falls back to the first max links in
// listing order.
func selectZones(links []string, allowlist []string, max int) []zoneRef {
	zones := make([]zoneRef, 0, len(links))
	for _, link := range links {
		zones = append(zones, zoneRef{link: link, tld: czds.TLDFromLink(link)})
	}

	if len(allowlist) > 0 {
		allowed := normalizeAllowlist(allowlist)
		selected := make([]zoneRef, 0, len(allowed))
		for _, zone := range zones {
			if slices.Contains(allowed, strings.ToLower(zone.tld)) {
				selected = append(selected, zone)
			}
		}
		return selected
	}

	if len(zones) > max {
		zones = zones[:max]
	}
	return zones
}

// normalizeAllowlist lowercases entries and converts Unicode TLDs to the
// punycode form CZDS uses in its links.
func normalizeAllowlist(allowlist []string) []string {
	normalized := make([]string, 0, len(allowlist))
	for _, entry := range allowlist {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if ascii, err := idna.ToASCII(entry); err == nil {
			entry = ascii
		}
		normalized = append(normalized, entry)
	}
	return normalized
}
