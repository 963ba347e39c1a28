/*
Package game
File: state.go
Description:
    Manages the runtime state of the application.

    A Session is the explicit context object the server passes around. It
    holds the loaded catalog, the derived pair registry, the alert engine,
    the spawn board, the assignees and the inventory of the selected galaxy.

    It also handles the initialization (LoadConfig) and reload logic.
    Reloading builds a fresh catalog, registry, engine and spawn board and
    swaps them in under the session lock; the pair registry is never patched
    in place. Class ids are tree indices, so everything resolved against the
    old tree is resolved again by name before the swap.
*/

package game

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/alert"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/assignee"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/pairs"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/store"
)

var (
	ErrUnknownSchematic = errors.New("unknown schematic")
	ErrUnknownPair      = errors.New("no schematic uses this requirement")
)

// LoadConfig reads the YAML config at path and fills in defaults.
// Relative file names are resolved against DataDir.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// DefaultConfig is the configuration used when fields are left empty.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Listen == "" {
		c.Listen = ":8081"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.ClassesFile == "" {
		c.ClassesFile = "classes.yaml"
	}
	if c.SchematicsFile == "" {
		c.SchematicsFile = "schematics.yaml"
	}
	if c.DBPath == "" {
		c.DBPath = "alerts.db"
	}
	if c.PulseSeconds <= 0 {
		c.PulseSeconds = 60
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 20
	}
	if c.Alerts == (alert.Settings{}) {
		c.Alerts = alert.DefaultSettings()
	}
	c.Alerts = c.Alerts.Normalize()
	return c
}

// Path resolves a configured file name against DataDir. Empty stays empty.
func (c Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

// PulseInterval is PulseSeconds as a duration.
func (c Config) PulseInterval() time.Duration {
	return time.Duration(c.PulseSeconds) * time.Second
}

// SpawnBoard is the live spawning set of one galaxy. Collaborators replace
// it wholesale; the engine reads it through alert.SpawnFeed.
type SpawnBoard struct {
	mu        sync.RWMutex
	galaxy    string
	resources []resource.KnownResource
}

// Spawning returns a copy of the current board.
func (b *SpawnBoard) Spawning() []resource.KnownResource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]resource.KnownResource(nil), b.resources...)
}

// Galaxy is the galaxy the board was last filled for.
func (b *SpawnBoard) Galaxy() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.galaxy
}

// Replace swaps the board contents.
func (b *SpawnBoard) Replace(galaxy string, list []resource.KnownResource) {
	b.mu.Lock()
	b.galaxy = galaxy
	b.resources = append([]resource.KnownResource(nil), list...)
	b.mu.Unlock()
}

// Session holds everything one running server works on.
type Session struct {
	// mu protects the fields below up to the blank line.
	// Any reader of catalog, registry, engine, board or inventory MUST hold
	// it, and must take all of them from one critical section (see current).
	mu        sync.RWMutex
	cfg       Config
	catalog   *catalog.Catalog
	registry  *pairs.Registry
	engine    *alert.Engine
	board     *SpawnBoard
	galaxy    string
	inventory []resource.InventoryEntry

	// assigneeMu serializes an assignee change with its save.
	assigneeMu sync.Mutex
	assignees  *assignee.Registry
	store      *store.Store
	loader     *catalog.Loader

	pulseMu         sync.Mutex
	lastFingerprint string

	InfoLog  *log.Logger
	ErrorLog *log.Logger

	// Clock drives resource age; replaceable in tests.
	Clock func() time.Time
}

// NewSession loads the catalog and restores persisted state. st may be nil,
// in which case nothing is persisted. Nil loggers discard output.
func NewSession(cfg Config, st *store.Store, info, errLog *log.Logger) (*Session, error) {
	if info == nil {
		info = log.New(io.Discard, "", 0)
	}
	if errLog == nil {
		errLog = log.New(io.Discard, "", 0)
	}
	s := &Session{
		cfg:       cfg.withDefaults(),
		board:     &SpawnBoard{},
		assignees: assignee.NewRegistry(),
		store:     st,
		loader:    &catalog.Loader{Log: errLog},
		InfoLog:   info,
		ErrorLog:  errLog,
		Clock:     time.Now,
	}

	if st != nil {
		list, err := st.LoadAssignees()
		if err != nil {
			return nil, fmt.Errorf("restore assignees: %w", err)
		}
		s.assignees.Restore(list)
		s.InfoLog.Printf("STORE: restored %d assignees", len(list))
	}

	if err := s.Reload(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog files named by cfg and rebuilds every derived
// structure. Inventory and a live spawn board already held by the session
// survive a reload of the same galaxy.
func (s *Session) Reload(cfg Config) error {
	cfg = cfg.withDefaults()

	cat, err := s.loader.Load(cfg.Path(cfg.ClassesFile), cfg.Path(cfg.SchematicsFile))
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	reg := pairs.NewRegistry(cat.Tree)
	for _, hq := range []bool{true, false} {
		if _, err := reg.AllForSchematics(cat.Schematics, hq); err != nil {
			return fmt.Errorf("index requirements: %w", err)
		}
	}

	galaxy := cfg.Galaxy
	var spawn []resource.KnownResource
	spawnLoaded := false
	if path := cfg.Path(cfg.SpawningFile); path != "" {
		g, list, err := s.loader.LoadSpawning(cat.Tree, path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			s.InfoLog.Printf("CATALOG: no spawn file at %s", path)
		case err != nil:
			return fmt.Errorf("load spawning: %w", err)
		default:
			if galaxy == "" {
				galaxy = g
			}
			spawn, spawnLoaded = list, true
		}
	}

	var stored []resource.InventoryEntry
	if !s.holdsInventory(galaxy) {
		stored, err = s.loadInventory(cfg, cat.Tree, galaxy)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	board := &SpawnBoard{}
	switch {
	case spawnLoaded:
		board.Replace(galaxy, spawn)
	case s.catalog != nil && (galaxy == "" || s.board.Galaxy() == "" || s.board.Galaxy() == galaxy):
		// Class ids belong to the old tree; resolve the board again by name.
		old := s.board.Spawning()
		docs := make([]catalog.ResourceDoc, len(old))
		for i, r := range old {
			docs[i] = catalog.FromKnown(s.catalog.Tree, r)
		}
		list, _ := s.loader.Resources(cat.Tree, "", docs)
		board.Replace(s.board.Galaxy(), list)
	}

	inventory := stored
	if s.catalog != nil && s.galaxy == galaxy && len(s.inventory) > 0 {
		docs := make([]catalog.InventoryDoc, len(s.inventory))
		for i, e := range s.inventory {
			docs[i] = catalog.FromInventory(s.catalog.Tree, e)
		}
		inventory, _ = s.loader.Inventory(cat.Tree, galaxy, docs)
	}

	engine := alert.NewEngine(cat.Tree, reg, board, cfg.Alerts)
	engine.Now = func() time.Time { return s.Clock() }

	s.cfg = cfg
	s.catalog = cat
	s.registry = reg
	s.engine = engine
	s.board = board
	s.galaxy = galaxy
	s.inventory = inventory

	s.InfoLog.Printf("CATALOG: %d classes, %d schematics, %d requirements, %d problems",
		cat.Tree.Len(), len(cat.Schematics), reg.Len(), len(cat.Problems))
	return nil
}

// holdsInventory reports whether the session already holds stacks for galaxy.
func (s *Session) holdsInventory(galaxy string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog != nil && s.galaxy == galaxy && len(s.inventory) > 0
}

// snapshot is one consistent view of the reloadable session state. Class
// ids in every field index the same tree.
type snapshot struct {
	cfg       Config
	catalog   *catalog.Catalog
	registry  *pairs.Registry
	engine    *alert.Engine
	board     *SpawnBoard
	galaxy    string
	inventory []resource.InventoryEntry
}

func (s *Session) current() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		cfg:       s.cfg,
		catalog:   s.catalog,
		registry:  s.registry,
		engine:    s.engine,
		board:     s.board,
		galaxy:    s.galaxy,
		inventory: s.inventory,
	}
}

// loadInventory prefers the stored snapshot for galaxy and falls back to the
// inventory file.
func (s *Session) loadInventory(cfg Config, tree *resource.Tree, galaxy string) ([]resource.InventoryEntry, error) {
	if s.store != nil && galaxy != "" {
		docs, _, err := s.store.LoadInventory(galaxy)
		switch {
		case err == nil:
			inv, _ := s.loader.Inventory(tree, galaxy, docs)
			return inv, nil
		case errors.Is(err, store.ErrNoSnapshot):
		default:
			s.ErrorLog.Printf("STORE: %v", err)
		}
	}

	path := cfg.Path(cfg.InventoryFile)
	if path == "" {
		return nil, nil
	}
	_, inv, err := s.loader.LoadInventory(tree, path)
	if errors.Is(err, os.ErrNotExist) {
		s.InfoLog.Printf("CATALOG: no inventory file at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	return inv, nil
}

// Config returns the configuration in effect.
func (s *Session) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Catalog returns the loaded catalog. It is immutable once loaded.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Complete reports whether the catalog loaded without skipped entries.
func (s *Session) Complete() bool {
	return s.Catalog().Complete()
}

// Galaxy is the selected galaxy.
func (s *Session) Galaxy() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.galaxy
}

// Board exposes the spawn board of the current catalog.
func (s *Session) Board() *SpawnBoard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Assignees exposes the assignee registry.
func (s *Session) Assignees() *assignee.Registry { return s.assignees }

// Inventory returns the held stacks as documents.
func (s *Session) Inventory() []catalog.InventoryDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.InventoryDoc, len(s.inventory))
	for i, e := range s.inventory {
		out[i] = catalog.FromInventory(s.catalog.Tree, e)
	}
	return out
}

// SetInventory replaces the held stacks. Entries that do not resolve are
// skipped and returned as problems. The accepted set is persisted.
func (s *Session) SetInventory(docs []catalog.InventoryDoc) ([]error, error) {
	s.mu.Lock()
	inv, problems := s.loader.Inventory(s.catalog.Tree, s.galaxy, docs)
	s.inventory = inv
	galaxy := s.galaxy
	kept := make([]catalog.InventoryDoc, len(inv))
	for i, e := range inv {
		kept[i] = catalog.FromInventory(s.catalog.Tree, e)
	}
	s.mu.Unlock()

	if s.store != nil && galaxy != "" {
		hash, err := s.store.SaveInventory(galaxy, kept)
		if err != nil {
			return problems, fmt.Errorf("save inventory: %w", err)
		}
		s.InfoLog.Printf("STORE: inventory snapshot %s: %d stacks, hash %s", galaxy, len(kept), hash[:12])
	}
	return problems, nil
}

// SetSpawning replaces the spawn board. Resources of other galaxies are
// dropped, as are entries that do not resolve.
func (s *Session) SetSpawning(doc catalog.SpawnFile) []error {
	// Held across the update so a reload cannot swap the tree in between.
	s.mu.RLock()
	defer s.mu.RUnlock()
	tree, galaxy := s.catalog.Tree, s.galaxy

	if galaxy == "" {
		galaxy = doc.Galaxy
	}
	res, problems := s.loader.Resources(tree, doc.Galaxy, doc.Resources)
	kept := res[:0]
	for _, r := range res {
		if galaxy == "" || r.Galaxy == "" || r.Galaxy == galaxy {
			kept = append(kept, r)
		}
	}
	s.board.Replace(galaxy, kept)
	return problems
}

// AddFavorite records schematic id for name after checking it exists.
func (s *Session) AddFavorite(name string, id int) error {
	if _, ok := s.Catalog().Schematic(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownSchematic, id)
	}
	s.assigneeMu.Lock()
	defer s.assigneeMu.Unlock()
	if err := s.assignees.AddFavorite(name, id); err != nil {
		return err
	}
	s.persistAssignees()
	return nil
}

// RemoveFavorite drops schematic id from name's favorites.
func (s *Session) RemoveFavorite(name string, id int) error {
	s.assigneeMu.Lock()
	defer s.assigneeMu.Unlock()
	if err := s.assignees.RemoveFavorite(name, id); err != nil {
		return err
	}
	s.persistAssignees()
	return nil
}

// AddAssignee creates an assignee.
func (s *Session) AddAssignee(name string) error {
	s.assigneeMu.Lock()
	defer s.assigneeMu.Unlock()
	if err := s.assignees.Add(name); err != nil {
		return err
	}
	s.persistAssignees()
	return nil
}

// RemoveAssignee deletes an assignee.
func (s *Session) RemoveAssignee(name string) error {
	s.assigneeMu.Lock()
	defer s.assigneeMu.Unlock()
	if err := s.assignees.Remove(name); err != nil {
		return err
	}
	s.persistAssignees()
	return nil
}

// persistAssignees saves the registry. Callers hold assigneeMu so saves
// land in mutation order.
func (s *Session) persistAssignees() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveAssignees(s.assignees.Snapshot()); err != nil {
		s.ErrorLog.Printf("STORE: save assignees: %v", err)
	}
}
