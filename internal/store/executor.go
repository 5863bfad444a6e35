package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"hikepredict/internal/picker"
	"hikepredict/pkg/types"
)

// API is the backend surface the store needs. *client.Client implements it.
type API interface {
	ListTrainingData(ctx context.Context) ([]types.TrainingItem, error)
	DeleteTrainingData(ctx context.Context, id types.ItemID) error
	UploadTrainingFile(ctx context.Context, file types.SelectedFile) error
	PredictTime(ctx context.Context, file types.SelectedFile) (float64, error)
}

// ErrNoPicker is reported when a pick is requested without a picker.
var ErrNoPicker = errors.New("no file picker available")

// Executor performs effects against an API and a Picker.
type Executor struct {
	API    API
	Picker picker.Picker
	Accept []string
	Log    zerolog.Logger
}

// Run performs eff and returns the action describing its outcome. It always
// returns a completion action, even when the API panics, so Loading is cleared
// on every path.
func (e *Executor) Run(ctx context.Context, eff Effect) (out Action) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal error: %v", r)
			e.Log.Error().Interface("panic", r).Str("effect", fmt.Sprintf("%T", eff)).Msg("effect panicked")
			out = failure(eff, err)
		}
	}()

	switch eff := eff.(type) {
	case FetchList:
		items, err := e.API.ListTrainingData(ctx)
		if err != nil {
			e.Log.Warn().Err(err).Msg("list training data failed")
			return ListFailed{Err: err}
		}
		return ListLoaded{Items: items}

	case DeleteItem:
		if err := e.API.DeleteTrainingData(ctx, eff.ID); err != nil {
			e.Log.Warn().Err(err).Str("id", eff.ID.String()).Msg("delete training data failed")
			return DeleteFailed{ID: eff.ID, Err: err}
		}
		return DeleteSucceeded{ID: eff.ID}

	case UploadFile:
		if err := e.API.UploadTrainingFile(ctx, eff.File); err != nil {
			e.Log.Warn().Err(err).Str("file", eff.File.Name).Msg("upload training file failed")
			return UploadFailed{Err: err}
		}
		e.Log.Info().Str("file", eff.File.Name).Msg("training file uploaded")
		return UploadSucceeded{File: eff.File}

	case PredictFile:
		minutes, err := e.API.PredictTime(ctx, eff.File)
		if err != nil {
			e.Log.Warn().Err(err).Str("file", eff.File.Name).Msg("predict time failed")
			return PredictFailed{Err: err}
		}
		e.Log.Info().Str("file", eff.File.Name).Float64("minutes", minutes).Msg("prediction received")
		return PredictSucceeded{Minutes: minutes}

	case PickFile:
		if e.Picker == nil {
			return PickFailed{Err: ErrNoPicker}
		}
		accept := e.Accept
		if len(accept) == 0 {
			accept = picker.DefaultAccept
		}
		f, err := e.Picker.Pick(ctx, eff.Purpose, accept)
		if errors.Is(err, picker.ErrCanceled) {
			return PickCanceled{}
		}
		if err != nil {
			return PickFailed{Err: err}
		}
		return FilePicked{Purpose: eff.Purpose, File: f}
	}
	return nil
}

// failure maps an effect to its failure action.
func failure(eff Effect, err error) Action {
	switch eff := eff.(type) {
	case FetchList:
		return ListFailed{Err: err}
	case DeleteItem:
		return DeleteFailed{ID: eff.ID, Err: err}
	case UploadFile:
		return UploadFailed{Err: err}
	case PredictFile:
		return PredictFailed{Err: err}
	case PickFile:
		return PickFailed{Err: err}
	}
	return nil
}
