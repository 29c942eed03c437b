package engine

import (
	"fmt"
	"strings"
)

const (
	DefaultBoardSize  = 5
	DefaultHandSize   = 12
	PlacementsPerTurn = 2
)

// CapturePolicy selects how long a flanked run may be.
type CapturePolicy uint8

const (
	// CaptureSingle removes only a lone opposing piece flanked by an own piece.
	CaptureSingle CapturePolicy = iota
	// CaptureRun removes any contiguous opposing run flanked by an own piece.
	CaptureRun
)

func (p CapturePolicy) String() string {
	switch p {
	case CaptureSingle:
		return "single"
	case CaptureRun:
		return "run"
	}
	return fmt.Sprintf("capture(%d)", uint8(p))
}

// ParseCapturePolicy accepts "single" or "run".
func ParseCapturePolicy(v string) (CapturePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "single", "":
		return CaptureSingle, nil
	case "run", "multi":
		return CaptureRun, nil
	}
	return CaptureSingle, fmt.Errorf("unknown capture policy %q", v)
}

// Rules holds the configurable parameters of a ruleset variant.
type Rules struct {
	BoardSize          uint8 // odd, 3..MaxBoardSize
	HandSize           uint8 // pieces each player places
	Capture            CapturePolicy
	ExtraMoveOnCapture bool  // a capturing slide keeps the turn
	LossThreshold      uint8 // a player with this many pieces or fewer on board loses
	CentralBlockade    bool  // centre is blocked during placement
}

// DefaultRules returns the standard 5x5, twelve-piece ruleset.
func DefaultRules() Rules {
	return Rules{
		BoardSize:          DefaultBoardSize,
		HandSize:           DefaultHandSize,
		Capture:            CaptureSingle,
		ExtraMoveOnCapture: true,
		LossThreshold:      1,
		CentralBlockade:    true,
	}
}

// Validate checks that the rules describe a playable board.
func (r Rules) Validate() error {
	if r.BoardSize < 3 || r.BoardSize > MaxBoardSize {
		return fmt.Errorf("board size %d outside [3,%d]", r.BoardSize, MaxBoardSize)
	}
	if r.BoardSize%2 == 0 {
		return fmt.Errorf("board size %d must be odd to have a centre", r.BoardSize)
	}
	if r.HandSize == 0 {
		return fmt.Errorf("hand size must be positive")
	}
	cells := int(r.BoardSize) * int(r.BoardSize)
	if r.CentralBlockade {
		cells--
	}
	if 2*int(r.HandSize) > cells {
		return fmt.Errorf("hand size %d does not fit: %d pieces for %d free cells", r.HandSize, 2*int(r.HandSize), cells)
	}
	if r.LossThreshold >= r.HandSize {
		return fmt.Errorf("loss threshold %d must be below hand size %d", r.LossThreshold, r.HandSize)
	}
	if r.Capture != CaptureSingle && r.Capture != CaptureRun {
		return fmt.Errorf("unknown capture policy %d", r.Capture)
	}
	return nil
}
