package regression

import (
	"testing"

	"github.com/alienzj/skani-go"
)

func TestGetModelRequiresFlag(t *testing.T) {
	if _, ok := GetModel(100, false); ok {
		t.Fatalf("GetModel should return false when learnedANI is unset")
	}
}

func TestGetModelUnknownC(t *testing.T) {
	if _, ok := GetModel(12345, true); ok {
		t.Fatalf("GetModel should return false for an unrecognized c")
	}
}

func TestGetModelKnownC(t *testing.T) {
	m, ok := GetModel(100, true)
	if !ok || m == nil {
		t.Fatalf("expected a compiled-in model for c=100")
	}
}

func TestPredictFromAniResClampsRange(t *testing.T) {
	model := &Model{C: 100, Slope: 2, Intercept: 50}
	est := skani.AniEstimate{Ani: 60}
	PredictFromAniRes(&est, model)
	if est.Ani != 100 {
		t.Fatalf("expected identity to clamp at 100, got %f", est.Ani)
	}
}

func TestPredictFromAniResNilModelNoop(t *testing.T) {
	est := skani.AniEstimate{Ani: 42}
	PredictFromAniRes(&est, nil)
	if est.Ani != 42 {
		t.Fatalf("nil model should not change the estimate")
	}
}
