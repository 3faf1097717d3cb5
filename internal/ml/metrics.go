package ml

import "churn-analytics/internal/dto"

// ClassificationReport scores binary predictions with 1 as the positive class.
// Undefined ratios are reported as 0.
func ClassificationReport(yTrue, yPred []int) dto.ClassificationMetrics {
	var tp, fp, fn, correct int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1 && yTrue[i] == 0:
			fp++
		case yPred[i] == 0 && yTrue[i] == 1:
			fn++
		}
	}
	m := dto.ClassificationMetrics{TestSize: len(yTrue)}
	m.Accuracy = ratio(correct, len(yTrue))
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1Score = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// RegressionReport returns MSE and R². A constant target scores R² 1 when
// predicted exactly and 0 otherwise.
func RegressionReport(yTrue, yPred []float64) dto.RegressionMetrics {
	m := dto.RegressionMetrics{TestSize: len(yTrue)}
	if len(yTrue) == 0 {
		return m
	}
	mean := 0.0
	for _, v := range yTrue {
		mean += v
	}
	mean /= float64(len(yTrue))

	var ssRes, ssTot float64
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		ssRes += d * d
		t := yTrue[i] - mean
		ssTot += t * t
	}
	m.MSE = ssRes / float64(len(yTrue))
	switch {
	case ssTot > 0:
		m.R2Score = 1 - ssRes/ssTot
	case ssRes == 0:
		m.R2Score = 1
	}
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
