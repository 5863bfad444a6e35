package store

import (
	"hikepredict/internal/picker"
	"hikepredict/pkg/types"
)

// Action is a user event or the outcome of an effect.
type Action interface{ action() }

type (
	// Mounted is dispatched once when the screen appears.
	Mounted struct{}
	// RefreshRequested asks for the training list again.
	RefreshRequested struct{}
	ListLoaded       struct{ Items []types.TrainingItem }
	ListFailed       struct{ Err error }

	DeleteRequested struct{ ID types.ItemID }
	DeleteSucceeded struct{ ID types.ItemID }
	DeleteFailed    struct {
		ID  types.ItemID
		Err error
	}

	// PickRequested opens the file picker for the given purpose.
	PickRequested struct{ Purpose picker.Purpose }
	PickCanceled  struct{}
	PickFailed    struct{ Err error }
	FilePicked    struct {
		Purpose picker.Purpose
		File    types.SelectedFile
	}

	UploadSucceeded  struct{ File types.SelectedFile }
	UploadFailed     struct{ Err error }
	PredictSucceeded struct{ Minutes float64 }
	PredictFailed    struct{ Err error }

	ErrorDismissed struct{}
)

func (Mounted) action()          {}
func (RefreshRequested) action() {}
func (ListLoaded) action()       {}
func (ListFailed) action()       {}
func (DeleteRequested) action()  {}
func (DeleteSucceeded) action()  {}
func (DeleteFailed) action()     {}
func (PickRequested) action()    {}
func (PickCanceled) action()     {}
func (PickFailed) action()       {}
func (FilePicked) action()       {}
func (UploadSucceeded) action()  {}
func (UploadFailed) action()     {}
func (PredictSucceeded) action() {}
func (PredictFailed) action()    {}
func (ErrorDismissed) action()   {}

// Effect is work the reducer asks the driver to perform.
type Effect interface{ effect() }

type (
	FetchList   struct{}
	DeleteItem  struct{ ID types.ItemID }
	UploadFile  struct{ File types.SelectedFile }
	PredictFile struct{ File types.SelectedFile }
	PickFile    struct{ Purpose picker.Purpose }
)

func (FetchList) effect()   {}
func (DeleteItem) effect()  {}
func (UploadFile) effect()  {}
func (PredictFile) effect() {}
func (PickFile) effect()    {}
