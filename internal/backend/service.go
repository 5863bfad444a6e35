// Package backend is an in-memory route prediction service for local
// development and end-to-end tests. It learns a pace from uploaded, timed GPX
// tracks and estimates completion times for new routes.
package backend

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"hikepredict/internal/gpx"
	"hikepredict/pkg/types"
)

// DefaultPace is the estimate in minutes per effort kilometer used before any
// training data exists.
const DefaultPace = 15.0

// Options configures a Service.
type Options struct {
	DefaultPace float64
	Logger      *zerolog.Logger
}

type record struct {
	item     types.TrainingItem
	effortKm float64
}

// Service stores training items and serves predictions. It is safe for
// concurrent use.
type Service struct {
	mu     sync.RWMutex
	items  []record
	nextID int
	pace   float64
	log    zerolog.Logger
}

// New returns an empty service.
func New(opts Options) *Service {
	pace := opts.DefaultPace
	if pace <= 0 {
		pace = DefaultPace
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	trainingItems.Set(0)
	return &Service{nextID: 1, pace: pace, log: log.With().Str("component", "backend").Logger()}
}

// Ready always reports true; the service has nothing to load.
func (s *Service) Ready() bool { return true }

// List returns the training items in insertion order, never nil.
func (s *Service) List() []types.TrainingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TrainingItem, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r.item)
	}
	return out
}

// Delete removes the item with id.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if string(r.item.ID) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			trainingItems.Set(float64(len(s.items)))
			s.log.Info().Str("id", id).Msg("training item deleted")
			return nil
		}
	}
	return ErrNotFound(id)
}

// Train stores the route in r as a training item. The completion time is the
// span between its first and last timestamps; untimed routes are rejected.
func (s *Service) Train(filename string, r io.Reader) (types.TrainingItem, error) {
	sum, err := gpx.Summarize(r)
	if err != nil {
		return types.TrainingItem{}, invalidRouteError{msg: err.Error()}
	}
	if !sum.Timed() {
		return types.TrainingItem{}, invalidRouteError{msg: "gpx has no timestamps"}
	}
	name := sum.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	if name == "" || name == "." {
		name = "Untitled route"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	it := types.TrainingItem{
		ID:             types.ItemID(strconv.Itoa(s.nextID)),
		Name:           name,
		CompletionTime: sum.Duration().Minutes(),
	}
	s.nextID++
	s.items = append(s.items, record{item: it, effortKm: sum.EffortKm()})
	trainingItems.Set(float64(len(s.items)))
	s.log.Info().Str("id", it.ID.String()).Str("name", name).Float64("minutes", it.CompletionTime).Float64("effort_km", sum.EffortKm()).Msg("training item stored")
	return it, nil
}

// Predict estimates the completion time in minutes of the route in r.
func (s *Service) Predict(r io.Reader) (float64, error) {
	sum, err := gpx.Summarize(r)
	if err != nil {
		predictionsTotal.WithLabelValues("invalid").Inc()
		return 0, err
	}
	est := sum.EffortKm() * s.Pace()
	predictionsTotal.WithLabelValues("ok").Inc()
	return est, nil
}

// Pace is the mean minutes per effort kilometer over all training items, or
// the default pace when there are none.
func (s *Service) Pace() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var minutes, km float64
	for _, r := range s.items {
		minutes += r.item.CompletionTime
		km += r.effortKm
	}
	if km <= 0 {
		return s.pace
	}
	return minutes / km
}
