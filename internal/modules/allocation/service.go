package allocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/classification"
	"github.com/rs/zerolog"
)

// DefaultPersistTimeout bounds each background save
const DefaultPersistTimeout = 5 * time.Second

// PositionProvider supplies the holdings of a holder
type PositionProvider interface {
	GetPositions(ctx context.Context, holderID string) ([]domain.Position, error)
	GetFixedIncome(ctx context.Context, holderID string) ([]domain.FixedIncomeItem, error)
}

// StateStore persists target states
type StateStore interface {
	Load(ctx context.Context, holderID string) (TargetState, bool, error)
	Save(ctx context.Context, holderID string, state TargetState) error
}

// Service runs target editing sessions for holders.
//
// The in-memory state is the source of truth for reads. Every change is saved in
// the background; a failed save is logged and the in-memory state is kept.
type Service struct {
	positions      PositionProvider
	store          StateStore
	classifier     *classification.Classifier
	states         map[string]TargetState
	versions       map[string]uint64
	log            zerolog.Logger
	persistTimeout time.Duration
	mu             sync.Mutex
	editMu         sync.Mutex
	saveMu         sync.Mutex
	wg             sync.WaitGroup
}

// NewService creates a new target service
func NewService(
	positions PositionProvider,
	store StateStore,
	classifier *classification.Classifier,
	persistTimeout time.Duration,
	log zerolog.Logger,
) *Service {
	if persistTimeout <= 0 {
		persistTimeout = DefaultPersistTimeout
	}
	return &Service{
		positions:      positions,
		store:          store,
		classifier:     classifier,
		states:         make(map[string]TargetState),
		versions:       make(map[string]uint64),
		persistTimeout: persistTimeout,
		log:            log.With().Str("service", "targets").Logger(),
	}
}

// snapshot is everything needed to evaluate one holder
type snapshot struct {
	positions   []domain.Position
	fixedIncome []domain.FixedIncomeItem
	state       TargetState
	total       float64
}

func (s *snapshot) tree() Tree {
	return BuildTree(s.positions, s.fixedIncome, s.total, s.state)
}

// GetTree evaluates the targets of a holder against the current holdings
func (s *Service) GetTree(ctx context.Context, holderID string) (Tree, error) {
	snap, err := s.snapshot(ctx, holderID)
	if err != nil {
		return Tree{}, err
	}
	return snap.tree(), nil
}

// State returns a copy of the current target state of a holder
func (s *Service) State(ctx context.Context, holderID string) (TargetState, error) {
	snap, err := s.snapshot(ctx, holderID)
	if err != nil {
		return TargetState{}, err
	}
	return snap.state, nil
}

// EditClassTarget sets one class target and rebalances the other classes
func (s *Service) EditClassTarget(ctx context.Context, holderID string, class domain.AssetClass, value float64) (Tree, error) {
	if !class.Valid() {
		return Tree{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return s.edit(ctx, holderID, func(_ *snapshot, state *TargetState) error {
		state.Classes = Redistribute(orderedClasses(state.Classes), string(class), ClampPercent(value))
		return nil
	})
}

// EditCapTarget sets one equity cap target and rebalances the other tiers
func (s *Service) EditCapTarget(ctx context.Context, holderID string, bucket domain.CapBucket, value float64) (Tree, error) {
	if !bucket.Valid() {
		return Tree{}, fmt.Errorf("%w: %q", ErrUnknownCap, bucket)
	}
	return s.edit(ctx, holderID, func(_ *snapshot, state *TargetState) error {
		caps := state.Caps.Clone()
		if !caps.Has(string(bucket)) {
			caps.Set(string(bucket), 0)
		}
		state.Caps = Redistribute(orderedCaps(caps), string(bucket), ClampPercent(value))
		return nil
	})
}

// EditSectorTarget sets one sector target below parentKey and rebalances its siblings.
// parentKey is the encoded path of a real estate fund class or an equity cap tier.
func (s *Service) EditSectorTarget(ctx context.Context, holderID, parentKey, sector string, value float64) (Tree, error) {
	parent, err := ParsePath(parentKey)
	if err != nil {
		return Tree{}, err
	}
	if !parent.IsSectorParent() || !validSector(sector) {
		return Tree{}, fmt.Errorf("%w: sector %q under %q", ErrInvalidKey, sector, parentKey)
	}
	return s.edit(ctx, holderID, func(_ *snapshot, state *TargetState) error {
		key := parent.Key()
		state.Sectors[key] = Redistribute(state.Sectors[key], sector, ClampPercent(value))
		return nil
	})
}

// EditTickerTarget sets one instrument target below parentKey and rebalances its siblings.
// parentKey is the encoded path of a sector or of a flat class.
func (s *Service) EditTickerTarget(ctx context.Context, holderID, parentKey, symbol string, value float64) (Tree, error) {
	parent, err := ParsePath(parentKey)
	if err != nil {
		return Tree{}, err
	}
	symbol = instrumentKey(parent.Class, symbol)
	if !parent.IsLeafParent() || symbol == "" {
		return Tree{}, fmt.Errorf("%w: instrument %q under %q", ErrInvalidKey, symbol, parentKey)
	}
	return s.edit(ctx, holderID, func(_ *snapshot, state *TargetState) error {
		key := parent.Key()
		state.Tickers[key] = Redistribute(state.Tickers[key], symbol, ClampPercent(value))
		return nil
	})
}

// ApplyProfile replaces every target of a holder with a preset
func (s *Service) ApplyProfile(ctx context.Context, holderID, profileID string) (Tree, error) {
	if _, err := LookupProfile(profileID); err != nil {
		return Tree{}, err
	}
	return s.edit(ctx, holderID, func(snap *snapshot, state *TargetState) error {
		applied, err := ApplyProfile(profileID, snap.positions, snap.fixedIncome)
		if err != nil {
			return err
		}
		*state = applied
		s.log.Info().Str("holder_id", holderID).Str("profile", profileID).Msg("Applied allocation profile")
		return nil
	})
}

// AddInstrument classifies symbol and inserts it at a 0% target so it can be edited next.
// viewClass is the class the caller is looking at; it is used for symbols that are
// neither known nor held. Held instruments keep their recorded cap and sector; for
// others bucket picks the cap tier, empty meaning DefaultCap.
func (s *Service) AddInstrument(ctx context.Context, holderID, symbol string, viewClass domain.AssetClass, bucket domain.CapBucket) (Tree, classification.Classification, error) {
	var cls classification.Classification
	if domain.NormalizeSymbol(symbol) == "" {
		return Tree{}, cls, fmt.Errorf("%w: empty symbol", ErrInvalidKey)
	}
	if bucket != "" && !bucket.Valid() {
		return Tree{}, cls, fmt.Errorf("%w: %q", ErrUnknownCap, bucket)
	}

	tree, err := s.edit(ctx, holderID, func(snap *snapshot, state *TargetState) error {
		cls = s.classifier.Classify(symbol, snap.positions, viewClass)
		key := instrumentKey(cls.AssetClass, symbol)

		h := normalizeHolding(cls.AssetClass, holding{symbol: key, cap: bucket, sector: cls.Sector})
		for _, pos := range snap.positions {
			if pos.Symbol == key && pos.AssetClass == cls.AssetClass {
				h = normalizeHolding(cls.AssetClass, holding{symbol: key, cap: pos.CapBucket, sector: pos.Sector})
				break
			}
		}

		shape := shapeOf(cls.AssetClass)
		if cls.AssetClass == domain.AssetClassEquity && !state.Caps.Has(string(h.cap)) {
			caps := state.Caps.Clone()
			caps.Set(string(h.cap), 0)
			state.Caps = orderedCaps(caps)
		}
		if parent, ok := shape.sectorParent(cls.AssetClass, h); ok {
			sectors := state.Sectors[parent.Key()].Clone()
			if !sectors.Has(h.sector) {
				sectors.Set(h.sector, 0)
			}
			state.Sectors[parent.Key()] = sectors
		}
		leaf := shape.leafParent(cls.AssetClass, h).Key()
		tickers := state.Tickers[leaf].Clone()
		if !tickers.Has(key) {
			tickers.Set(key, 0)
		}
		state.Tickers[leaf] = tickers
		return nil
	})
	if err != nil {
		return Tree{}, cls, err
	}

	s.log.Info().
		Str("holder_id", holderID).
		Str("symbol", domain.NormalizeSymbol(symbol)).
		Str("asset_class", string(cls.AssetClass)).
		Str("sector", cls.Sector).
		Msg("Added instrument to targets")
	return tree, cls, nil
}

// SuggestForContribution plans how to invest amount towards the current targets
func (s *Service) SuggestForContribution(ctx context.Context, holderID string, amount float64) (Suggestion, error) {
	snap, err := s.snapshot(ctx, holderID)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggest(amount, snap.tree()), nil
}

// Wait blocks until every background save has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// edit applies fn to a copy of the holder's state, publishes it and saves it in the background
func (s *Service) edit(ctx context.Context, holderID string, fn func(*snapshot, *TargetState) error) (Tree, error) {
	s.editMu.Lock()
	defer s.editMu.Unlock()

	snap, err := s.snapshot(ctx, holderID)
	if err != nil {
		return Tree{}, err
	}

	next := snap.state.Clone()
	next.ensureMaps()
	if err := fn(snap, &next); err != nil {
		return Tree{}, err
	}

	s.mu.Lock()
	s.states[holderID] = next
	s.versions[holderID]++
	version := s.versions[holderID]
	s.mu.Unlock()

	s.persist(holderID, next.Clone(), version)

	snap.state = next
	return snap.tree(), nil
}

// snapshot loads holdings and the current state. A holder without a saved state gets
// an equal-weight state built from the holdings.
func (s *Service) snapshot(ctx context.Context, holderID string) (*snapshot, error) {
	positions, err := s.positions.GetPositions(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	fixedIncome, err := s.positions.GetFixedIncome(ctx, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixed income: %w", err)
	}

	snap := &snapshot{
		positions:   s.classifier.ResolvePositions(positions),
		fixedIncome: fixedIncome,
	}
	for _, pos := range snap.positions {
		snap.total += pos.Value()
	}
	for _, item := range fixedIncome {
		snap.total += item.Principal
	}

	state, err := s.currentState(ctx, holderID, snap)
	if err != nil {
		return nil, err
	}
	snap.state = state
	return snap, nil
}

func (s *Service) currentState(ctx context.Context, holderID string, snap *snapshot) (TargetState, error) {
	s.mu.Lock()
	state, ok := s.states[holderID]
	s.mu.Unlock()
	if ok {
		return state.Clone(), nil
	}

	stored, found, err := s.store.Load(ctx, holderID)
	if err != nil {
		return TargetState{}, fmt.Errorf("failed to load target state: %w", err)
	}

	initialized := false
	if !found {
		if len(snap.positions) == 0 && len(snap.fixedIncome) == 0 {
			return NewTargetState(), nil
		}
		stored = AutoInitialize(snap.positions, snap.fixedIncome)
		initialized = true
	}
	stored.ensureMaps()

	s.mu.Lock()
	if current, ok := s.states[holderID]; ok {
		s.mu.Unlock()
		return current.Clone(), nil
	}
	s.states[holderID] = stored
	s.versions[holderID]++
	version := s.versions[holderID]
	s.mu.Unlock()

	if initialized {
		s.log.Info().Str("holder_id", holderID).Msg("Initialized equal-weight targets")
		s.persist(holderID, stored.Clone(), version)
	}
	return stored.Clone(), nil
}

// persist saves state in the background. Saves run one at a time and a save is
// skipped when a newer version of the same holder is already queued.
func (s *Service) persist(holderID string, state TargetState, version uint64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.saveMu.Lock()
		defer s.saveMu.Unlock()

		s.mu.Lock()
		latest := s.versions[holderID]
		s.mu.Unlock()
		if version < latest {
			s.log.Debug().Str("holder_id", holderID).Uint64("version", version).Msg("Skipping superseded save")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()

		if err := s.store.Save(ctx, holderID, state); err != nil {
			s.log.Error().Err(err).Str("holder_id", holderID).Msg("Failed to save target state")
			return
		}
		s.log.Debug().Str("holder_id", holderID).Uint64("version", version).Msg("Target state persisted")
	}()
}

// instrumentKey normalizes ticker symbols; fixed income ids are kept as given
func instrumentKey(class domain.AssetClass, symbol string) string {
	if class == domain.AssetClassFixedIncome {
		return symbol
	}
	return domain.NormalizeSymbol(symbol)
}
