package ui

import "testing"

func TestChangeColorSign(t *testing.T) {
	gain := changeColor(5)
	loss := changeColor(-5)
	flat := changeColor(0)

	if gain.G <= gain.R {
		t.Errorf("gain tone should lean green/teal: %+v", gain)
	}
	if loss.R <= loss.G {
		t.Errorf("loss tone should lean red/rose: %+v", loss)
	}
	if flat == gain || flat == loss {
		t.Error("near-zero change should use the neutral tone")
	}
}

func TestChangeColorSaturatesWithMagnitude(t *testing.T) {
	small := changeColor(1)
	big := changeColor(15)
	if big.G <= small.G {
		t.Errorf("larger gains should render hotter: %+v vs %+v", small, big)
	}
	// Saturation caps at the palette color.
	if changeColor(15) != changeColor(40) {
		t.Error("tone should clamp at full intensity")
	}
}

func TestWithAlpha(t *testing.T) {
	c := withAlpha(colText, 0.5)
	if c.A != 127 {
		t.Errorf("alpha = %d, want 127", c.A)
	}
	if c.R >= colText.R {
		t.Error("premultiplied channels should shrink with alpha")
	}
}
