// Package abci provides shared utilities for ABCI error handling across modules.
package abci

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ErrorSeverity classifies the severity of ABCI blocker errors.
type ErrorSeverity int

const (
	// SeverityLow indicates minor errors that don't affect core functionality.
	SeverityLow ErrorSeverity = iota

	// SeverityMedium indicates errors that degrade functionality, such as a
	// failed arbitrage search, without affecting settlement.
	SeverityMedium

	// SeverityHigh indicates errors affecting important operations.
	SeverityHigh

	// SeverityCritical indicates errors that may affect chain integrity.
	// The block must not be committed.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Classifier maps an error to its severity.
type Classifier func(error) ErrorSeverity

// BlockerErrorHandler provides standardized error handling for ABCI blockers.
// It logs errors with severity and emits monitoring events. Critical errors
// are handed back to the caller so the blocker can abort.
type BlockerErrorHandler struct {
	moduleName string
	ctx        sdk.Context
	classify   Classifier
}

// NewBlockerErrorHandler creates a new error handler for the given module.
// A nil classifier treats every error as SeverityHigh.
func NewBlockerErrorHandler(ctx sdk.Context, moduleName string, classify Classifier) *BlockerErrorHandler {
	if classify == nil {
		classify = func(error) ErrorSeverity { return SeverityHigh }
	}
	return &BlockerErrorHandler{
		moduleName: moduleName,
		ctx:        ctx,
		classify:   classify,
	}
}

// Handle classifies err and handles it. It returns err only when it is critical.
func (h *BlockerErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	return h.HandleError(operation, h.classify(err), err)
}

// HandleError logs and emits an event for an error with the given severity.
// Non-critical errors are absorbed and nil is returned, so the blocker
// continues; critical errors are returned wrapped with the operation.
func (h *BlockerErrorHandler) HandleError(operation string, severity ErrorSeverity, err error) error {
	if err == nil {
		return nil
	}

	logger := h.ctx.Logger()
	kv := []any{
		"module", h.moduleName,
		"operation", operation,
		"severity", severity.String(),
		"error", err.Error(),
	}
	switch severity {
	case SeverityCritical:
		logger.Error("CRITICAL ABCI error", kv...)
	case SeverityHigh:
		logger.Error("ABCI blocker error", kv...)
	case SeverityMedium:
		logger.Warn("ABCI blocker warning", kv...)
	default:
		logger.Debug("ABCI blocker minor issue", kv...)
	}

	h.ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"abci_blocker_error",
			sdk.NewAttribute("module", h.moduleName),
			sdk.NewAttribute("operation", operation),
			sdk.NewAttribute("severity", severity.String()),
			sdk.NewAttribute("error", err.Error()),
			sdk.NewAttribute("height", fmt.Sprintf("%d", h.ctx.BlockHeight())),
		),
	)

	if severity == SeverityCritical {
		return fmt.Errorf("%s: %s: %w", h.moduleName, operation, err)
	}
	return nil
}

// WrapError is a convenience method for handling non-critical errors
// inline. It returns true if there was an error.
//
//	if handler.WrapError("evict", SeverityLow, err) {
//	    // error was handled, continue to next operation
//	}
func (h *BlockerErrorHandler) WrapError(operation string, severity ErrorSeverity, err error) bool {
	if err != nil {
		_ = h.HandleError(operation, severity, err)
		return true
	}
	return false
}
