package db

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/polykv/polykv-go/internal/collection"
	"github.com/polykv/polykv-go/internal/document"
	"github.com/polykv/polykv-go/internal/graph"
	"github.com/polykv/polykv-go/internal/snapshot"
	"github.com/polykv/polykv-go/internal/status"
	"github.com/polykv/polykv-go/internal/substrate"
	"github.com/polykv/polykv-go/internal/txn"
	"github.com/polykv/polykv-go/internal/wal"
)

// Database composes one substrate with every layer above it: the
// collection registry, the transaction manager, the snapshot manager
// (when the substrate supports it), and the document store. Blob and
// graph operations are free functions / small constructors over the
// substrate and are exposed here as thin convenience wrappers so callers
// do not have to thread the substrate handle through themselves.
type Database struct {
	cfg Config

	Substrate   substrate.Engine
	Collections *collection.Registry
	Txns        *txn.Manager
	Documents   *document.Store

	// Snapshots is nil when the active substrate does not implement
	// substrate.Snapshotter.
	Snapshots *snapshot.Manager

	wal    *wal.Writer
	walDir string
	logger *slog.Logger
}

// Open constructs every component against cfg's chosen substrate, but
// does not replay any write-ahead log — call Recover first if the
// directory may contain one from a previous run.
func Open(ctx context.Context, cfg Config) (*Database, *status.Status) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var eng substrate.Engine
	switch cfg.Backend {
	case BackendBadger:
		e, err := substrate.NewBadger(cfg.Badger, cfg.Logger)
		if err != nil {
			return nil, status.Wrapf(status.Substrate, err, "db: open badger substrate")
		}
		eng = e
	case BackendMemory, "":
		eng = substrate.NewMemory()
	default:
		return nil, status.Newf(status.InvalidArgument, "db: unknown backend %q", cfg.Backend)
	}

	registry, st := collection.Open(ctx, eng)
	if st != nil {
		eng.Close()
		return nil, st
	}

	var snapMgr *snapshot.Manager
	if _, ok := eng.(substrate.Snapshotter); ok {
		mgr, st := snapshot.NewManager(eng)
		if st != nil {
			eng.Close()
			return nil, st
		}
		snapMgr = mgr
	}

	var w *wal.Writer
	var walDir string
	if cfg.EnableWAL {
		walCfg := cfg.WAL
		if walCfg.Dir == "" {
			walCfg.Dir = cfg.DataDir
		}
		walCfg.Cipher = cfg.Cipher
		writer, err := wal.NewWriter(walCfg)
		if err != nil {
			eng.Close()
			return nil, status.Wrapf(status.Substrate, err, "db: open WAL")
		}
		w = writer
		walDir = walCfg.Dir
	}

	mgr := txn.NewManager(eng)

	return &Database{
		cfg:         cfg,
		Substrate:   eng,
		Collections: registry,
		Txns:        mgr,
		Documents:   document.NewStore(eng, mgr),
		Snapshots:   snapMgr,
		wal:         w,
		walDir:      walDir,
		logger:      cfg.Logger,
	}, nil
}

// Recover replays every entry in the write-ahead log onto the substrate
// and primes the transaction manager's generation table so recovered
// keys are not mistaken for stale reads by a transaction that observed
// them pre-crash. It is a no-op if WAL is disabled. The first error from
// reading the log or applying an entry stops the replay and is returned;
// a replayed delete of a key that is already absent succeeds, because the
// substrate's Delete does not report a missing key.
func (d *Database) Recover(ctx context.Context) *status.Status {
	if !d.cfg.EnableWAL {
		return nil
	}

	walCfg := d.cfg.WAL
	if walCfg.Dir == "" {
		walCfg.Dir = d.cfg.DataDir
	}

	reader, err := wal.NewReader(walCfg.Dir, d.cfg.Cipher)
	if err != nil {
		return status.Wrapf(status.Substrate, err, "db: open WAL reader")
	}
	defer reader.Close()

	for {
		entry, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return status.Wrapf(status.Substrate, err, "db: read WAL entry")
		}

		if st := d.applyEntry(ctx, entry); st != nil {
			return st
		}
	}
	return nil
}

func (d *Database) applyEntry(ctx context.Context, entry *wal.Entry) *status.Status {
	switch entry.OpType {
	case wal.OpTypeSet:
		if err := d.Substrate.Set(ctx, entry.Collection, entry.Key, entry.Value); err != nil {
			return status.Wrap(status.Substrate, err)
		}
		d.Txns.Seed(entry.Collection, entry.Key, entry.Generation)
	case wal.OpTypeDelete:
		if err := d.Substrate.Delete(ctx, entry.Collection, entry.Key); err != nil {
			return status.Wrap(status.Substrate, err)
		}
		d.Txns.Seed(entry.Collection, entry.Key, entry.Generation)
	case wal.OpTypeDropCollection:
		if err := d.Substrate.DropCollection(ctx, entry.Collection); err != nil {
			return status.Wrap(status.Substrate, err)
		}
	}
	return nil
}

// BeginTxn starts a transaction reading the live substrate.
func (d *Database) BeginTxn() *txn.Txn {
	return d.Txns.Begin(nil)
}

// BeginSnapshotTxn takes a new snapshot, retains it, and starts a
// transaction whose reads are pinned to it. The returned release func
// must be called once the transaction (and anyone else sharing the
// snapshot) is done with it; it releases the manager's reference, not
// necessarily the snapshot itself if other callers still hold it.
func (d *Database) BeginSnapshotTxn(ctx context.Context) (*txn.Txn, snapshot.ID, func(), *status.Status) {
	if d.Snapshots == nil {
		return nil, "", nil, status.New(status.NotImplemented, "substrate does not support snapshots")
	}
	id, st := d.Snapshots.Create(ctx)
	if st != nil {
		return nil, "", nil, st
	}
	view, st := d.Snapshots.Engine(id)
	if st != nil {
		return nil, "", nil, st
	}
	release := func() { d.Snapshots.Release(id) }
	return d.Txns.Begin(view), id, release, nil
}

// Commit commits tx and, if WAL is enabled, journals every write it
// applied. Conflicts are detected by tx.Commit against the transaction
// manager's generation table; journaling happens only after Commit has
// already succeeded, so a WAL entry always describes a write that is
// already live.
func (d *Database) Commit(ctx context.Context, tx *txn.Txn) *status.Status {
	if st := tx.Commit(ctx); st != nil {
		return st
	}
	if d.wal == nil {
		return nil
	}
	for _, w := range tx.CommittedWrites() {
		var entry *wal.Entry
		switch {
		case w.IsDrop:
			entry = wal.NewDropCollectionEntry(w.Collection)
		case w.IsDelete:
			entry = wal.NewDeleteEntry(w.Collection, w.Key, w.Generation)
		default:
			entry = wal.NewSetEntry(w.Collection, w.Key, w.Value, w.Generation)
		}
		if err := d.wal.Append(entry); err != nil {
			d.logger.Error("wal append failed after commit", "error", err)
		}
	}
	return nil
}

// CompactWAL deletes WAL segments older than the one currently being
// written, retaining at least retain of the most recent (0 or negative
// uses wal.DefaultRetainCount). Since every WAL entry is appended only
// after Commit has already applied it to the substrate, every segment
// this deletes is already reflected in live state. The deleted entries
// are no longer replayed by Recover, so with BackendMemory, whose only
// durability is the WAL, their writes do not survive a restart. It is a
// no-op if WAL is disabled.
func (d *Database) CompactWAL(retain int) *status.Status {
	if d.wal == nil {
		return nil
	}
	var opts []wal.CompactorOption
	if retain > 0 {
		opts = append(opts, wal.WithRetainCount(retain))
	}
	compactor := wal.NewCompactor(d.walDir, opts...)
	if err := compactor.Compact(d.wal.CurrentOffset()); err != nil {
		return status.Wrapf(status.Substrate, err, "db: compact WAL")
	}
	return nil
}

// Graph returns a graph handle over collection, reading and writing
// through this Database's live substrate.
func (d *Database) Graph(collectionID uint64) *graph.Graph {
	return graph.New(d.Substrate, d.Txns, collectionID)
}

// SubstrateSizeBytes implements metrics.Sampler. It returns 0 for a
// substrate that does not implement substrate.Sizer.
func (d *Database) SubstrateSizeBytes() int64 {
	if s, ok := d.Substrate.(substrate.Sizer); ok {
		return s.SizeBytes()
	}
	return 0
}

// WALSegmentSizeBytes implements metrics.Sampler. It returns 0 when WAL
// durability is disabled.
func (d *Database) WALSegmentSizeBytes() int64 {
	if d.wal == nil {
		return 0
	}
	return d.wal.SizeBytes()
}

// SnapshotsOpen implements metrics.Sampler. It returns 0 when the active
// substrate does not support snapshots.
func (d *Database) SnapshotsOpen() int {
	if d.Snapshots == nil {
		return 0
	}
	return len(d.Snapshots.List())
}

// MetricsCollectors returns any Prometheus collectors the active
// substrate maintains on its own (e.g. Badger's LSM/value-log size
// gauges), for a caller to register alongside a metrics.Registry.
func (d *Database) MetricsCollectors() []prometheus.Collector {
	if s, ok := d.Substrate.(substrate.CollectorSource); ok {
		return s.Collectors()
	}
	return nil
}

// Close flushes and closes the WAL (if enabled) and the substrate, in
// that order, so no WAL entry can describe a write the substrate never
// durably received.
func (d *Database) Close() error {
	var firstErr error
	if d.wal != nil {
		if err := d.wal.Close(); err != nil {
			firstErr = err
		}
	}
	if err := d.Substrate.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
