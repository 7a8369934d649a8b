package landmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel_Mode(t *testing.T) {
	for _, name := range []string{"classifier", "regressor"} {
		mode, err := ParseMode(name)
		require.NoError(t, err)
		assert.Equal(t, name, mode.String())
	}
	_, err := ParseMode("detector")
	assert.Error(t, err)

	assert.Equal(t, 0.25, Classifier.ScaleRatio())
	assert.Equal(t, 1.0, Regressor.ScaleRatio())
	assert.True(t, Classifier.Integral())
	assert.False(t, Regressor.Integral())
	assert.Equal(t, "unknown", Mode(7).String())
}

func TestLabel_ConvertClassifier(t *testing.T) {
	raw := testLandmarks()
	raw[3] = Point{X: 101.9, Y: 302.1}

	ok, label, err := ConvertLabel(raw, Classifier)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, label, NumLandmarks)

	// The order of the landmarks is preserved.
	for i, p := range raw {
		assert.Equal(t, Point{X: float64(int(p.X/4 + 0.5)), Y: float64(int(p.Y/4 + 0.5))}, label[i])
	}
	assert.Equal(t, Point{X: 25, Y: 76}, label[3])
	assert.Equal(t, 101.9, raw[3].X, "raw label must not change")
}

func TestLabel_ConvertRegressor(t *testing.T) {
	raw := testLandmarks()
	raw[0] = Point{X: 10.4, Y: 20.6}

	ok, label, err := ConvertLabel(raw, Regressor)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 21}, label[0])
	assert.Equal(t, raw[1:], label[1:])
}

func TestLabel_Collision(t *testing.T) {
	raw := testLandmarks()
	// Both points round to the cell (25, 25).
	raw[0] = Point{X: 100, Y: 100}
	raw[40] = Point{X: 101, Y: 101}

	ok, label, err := ConvertLabel(raw, Classifier)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, label)

	// Full resolution keeps the two points apart.
	ok, _, err = ConvertLabel(raw, Regressor)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLabel_ConvertInvalid(t *testing.T) {
	_, _, err := ConvertLabel(testLandmarks()[:10], Classifier)
	assert.Error(t, err)
}
