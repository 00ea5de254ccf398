package calculator

import "DualHalfTrend/internal/model"

// Compute builds the rolling statistics of one channel over the full series.
func Compute(bars []model.OHLCV, window, atrPeriod int, mode ATRMode) model.RollingStats {
	highs, lows := model.Highs(bars), model.Lows(bars)
	return model.RollingStats{
		Window:  window,
		HighMax: RollingMax(highs, window),
		LowMin:  RollingMin(lows, window),
		SMAHigh: SMA(highs, window),
		SMALow:  SMA(lows, window),
		HalfATR: HalfATR(bars, atrPeriod, mode),
	}
}
