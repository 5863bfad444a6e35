package store

import (
	"hikepredict/internal/picker"
	"hikepredict/pkg/types"
)

// Labels prefix the reason of each failed action in ErrorMessage.
const (
	LabelList    = "Error fetching training data"
	LabelDelete  = "Error deleting training data"
	LabelUpload  = "Error uploading training file"
	LabelPredict = "Error predicting time"
	LabelPick    = "Error picking file"
)

// Message formats a failure for display.
func Message(label string, err error) string {
	reason := "unknown error"
	if err != nil && err.Error() != "" {
		reason = err.Error()
	}
	return label + ": " + reason
}

// Reduce returns the state after a and the effects a requires. It never
// mutates s and never performs I/O.
func Reduce(s State, a Action) (State, []Effect) {
	next := s.Clone()
	switch a := a.(type) {
	case Mounted, RefreshRequested:
		return next, []Effect{FetchList{}}

	case ListLoaded:
		next.TrainingItems = append([]types.TrainingItem{}, a.Items...)
		return next, nil

	case ListFailed:
		next.TrainingItems = []types.TrainingItem{}
		next.ErrorMessage = Message(LabelList, a.Err)
		return next, nil

	case DeleteRequested:
		return next, []Effect{DeleteItem{ID: a.ID}}

	case DeleteSucceeded:
		// The server is the source of truth; no local removal.
		next.ErrorMessage = ""
		return next, []Effect{FetchList{}}

	case DeleteFailed:
		next.ErrorMessage = Message(LabelDelete, a.Err)
		return next, nil

	case PickRequested:
		if s.Loading {
			return s, nil
		}
		return next, []Effect{PickFile{Purpose: a.Purpose}}

	case PickCanceled:
		return s, nil

	case PickFailed:
		next.ErrorMessage = Message(LabelPick, a.Err)
		return next, nil

	case FilePicked:
		if s.Loading {
			return s, nil
		}
		next.Loading = true
		if a.Purpose == picker.ForPrediction {
			next.Prediction = nil
			return next, []Effect{PredictFile{File: a.File}}
		}
		return next, []Effect{UploadFile{File: a.File}}

	case UploadSucceeded:
		next.Loading = false
		next.ErrorMessage = ""
		return next, []Effect{FetchList{}}

	case UploadFailed:
		next.Loading = false
		next.ErrorMessage = Message(LabelUpload, a.Err)
		return next, nil

	case PredictSucceeded:
		next.Loading = false
		next.ErrorMessage = ""
		m := a.Minutes
		next.Prediction = &m
		return next, nil

	case PredictFailed:
		next.Loading = false
		next.Prediction = nil
		next.ErrorMessage = Message(LabelPredict, a.Err)
		return next, nil

	case ErrorDismissed:
		next.ErrorMessage = ""
		return next, nil
	}
	return s, nil
}
