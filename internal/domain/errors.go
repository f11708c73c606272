package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoSkinsSelected     = errors.New("no skins selected")
	ErrToolsMissing        = errors.New("mod-tools executable not found")
	ErrModNotFound         = errors.New("mod not found")
	ErrInvalidModStructure = errors.New("invalid mod structure: META/info.json not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNotFound            = errors.New("not found")
	ErrInvalidReference    = errors.New("invalid skin reference")
	ErrNetworkFailure      = errors.New("network failure")
	ErrChampionConflict    = errors.New("multiple skins selected for one champion")
	ErrCommandFailed       = errors.New("command failed")
	ErrProcessFailed       = errors.New("process failed")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrGamePathNotSet      = errors.New("game path not set")
)

// AcquisitionReason is the failure class of an acquisition
type AcquisitionReason string

const (
	ReasonNotFound         AcquisitionReason = "NotFound"
	ReasonInvalidReference AcquisitionReason = "InvalidReference"
	ReasonNetworkFailure   AcquisitionReason = "NetworkFailure"
)

// AcquisitionError reports a failure to obtain an archive for a reference
type AcquisitionError struct {
	Reason AcquisitionReason
	Ref    SkinReference
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("acquiring %s: %s: %v", e.Ref, e.Reason, e.Err)
	}
	return fmt.Sprintf("acquiring %s: %s", e.Ref, e.Reason)
}

func (e *AcquisitionError) Unwrap() []error {
	var sentinel error
	switch e.Reason {
	case ReasonNotFound:
		sentinel = ErrNotFound
	case ReasonInvalidReference:
		sentinel = ErrInvalidReference
	default:
		sentinel = ErrNetworkFailure
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// NormalizationKind is the failure class of a normalization
type NormalizationKind string

const (
	KindInvalidModStructure NormalizationKind = "InvalidModStructure"
	KindUnsupportedFileType NormalizationKind = "UnsupportedFileType"
	KindIOError             NormalizationKind = "IOError"
)

// NormalizationError reports a failure to turn a file into a mod directory
type NormalizationError struct {
	Kind NormalizationKind
	Path string
	Err  error
}

func (e *NormalizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalizing %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("normalizing %s: %s", e.Path, e.Kind)
}

func (e *NormalizationError) Unwrap() []error {
	errs := make([]error, 0, 2)
	switch e.Kind {
	case KindInvalidModStructure:
		errs = append(errs, ErrInvalidModStructure)
	case KindUnsupportedFileType:
		errs = append(errs, ErrUnsupportedFileType)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ConflictError reports more than one selection for a single champion
type ConflictError struct {
	ChampionKey string
	Count       int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("multiple skins selected for %s (%d). Only one skin per champion can be applied at a time", e.ChampionKey, e.Count)
}

func (e *ConflictError) Unwrap() error {
	return ErrChampionConflict
}

// SkinError attributes a profile build failure to one selected skin
type SkinError struct {
	Ref SkinReference
	Err error
}

func (e *SkinError) Error() string {
	return fmt.Sprintf("failed to prepare %s: %v", e.Ref.ModName(), e.Err)
}

func (e *SkinError) Unwrap() error {
	return e.Err
}

// CommandFailedError reports a non-zero exit of a synchronous mod-tools command
type CommandFailedError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

func (e *CommandFailedError) Unwrap() error {
	return ErrCommandFailed
}

// ProcessError reports a failure to spawn or talk to the overlay process
type ProcessError struct {
	Op  string
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("overlay process %s: %v", e.Op, e.Err)
}

func (e *ProcessError) Unwrap() []error {
	return []error{ErrProcessFailed, e.Err}
}
