// Package fraud flags anomalous transactions by combining two independent
// detectors over billing deltas: an isolation forest and a reconstruction
// autoencoder. The scaler and thresholds are fit once over the historical
// set and frozen for every later single-record check.
package fraud

import (
	"fmt"
	"log"

	"github.com/bryanwahyu/inventory-analytics/internal/analytics/anomaly"
	"github.com/bryanwahyu/inventory-analytics/internal/analytics/stat"
	"github.com/bryanwahyu/inventory-analytics/internal/domain/records"
)

const (
	contamination = 0.05
	bottleneck    = 2
)

// Transaction is a bill line joined to its product, with the billing delta.
type Transaction struct {
	records.BillLine
	ExpectedTotal    float64 `json:"expected_total"`
	Difference       float64 `json:"difference"`
	IsoAnomaly       bool    `json:"iso_anomaly"`
	AutoAnomaly      bool    `json:"auto_anomaly"`
	AutoencoderError float64 `json:"autoencoder_mse"`
	AnomalyFlag      bool    `json:"anomaly_flag"`
}

// Detector holds the frozen models. The zero value answers every call with
// ErrNotTrained; a usable Detector only comes out of Train.
type Detector struct {
	prices  map[records.SKU]float64
	scaler  *stat.Standardizer
	forest  *anomaly.IsolationForest
	encoder *anomaly.Autoencoder
	history []Transaction
	trained bool
}

// Detection is the single-record check result plus the historical anomalies.
type Detection struct {
	IsoScore              float64       `json:"iso_score"`
	IsoPrediction         int           `json:"iso_prediction"` // 1 normal, -1 anomaly
	AutoencoderError      float64       `json:"autoencoder_error"`
	IsAnomaly             bool          `json:"is_anomaly"`
	AnomalousTransactions []Transaction `json:"anomalous_transactions"`
}

// Train joins bills to the catalog, fits the scaler and both detectors over
// the joined history, and flags every historical transaction. Lines whose
// SKU is absent from the catalog are excluded with a join-miss warning.
func Train(products []records.Product, bills []records.BillLine) (*Detector, error) {
	prices := make(map[records.SKU]float64, len(products))
	for _, p := range products {
		prices[p.SKU] = p.Price
	}

	var txs []Transaction
	for _, b := range bills {
		price, ok := prices[b.ProductSKU]
		if !ok {
			log.Printf("fraud: bill %s sku %s not in catalog, excluded from training", b.BillNumber, b.ProductSKU)
			continue
		}
		expected := price * b.Quantity
		txs = append(txs, Transaction{
			BillLine:      b,
			ExpectedTotal: expected,
			Difference:    b.TotalAmount - expected,
		})
	}
	if len(txs) == 0 {
		return nil, records.ErrNoRecords
	}

	x := make([][]float64, len(txs))
	for i, t := range txs {
		x[i] = featureVector(t.Quantity, t.TotalAmount, t.Difference)
	}
	scaler := stat.FitStandardizer(x)
	scaled := scaler.TransformAll(x)

	forest := anomaly.FitIsolationForest(scaled, contamination, stat.Seed)
	encoder := anomaly.FitAutoencoder(scaled, bottleneck, stat.Seed)

	for i := range txs {
		txs[i].IsoAnomaly = forest.IsAnomaly(scaled[i])
		txs[i].AutoencoderError = encoder.ReconstructionError(scaled[i])
		txs[i].AutoAnomaly = txs[i].AutoencoderError > encoder.ErrorThreshold
		txs[i].AnomalyFlag = txs[i].IsoAnomaly || txs[i].AutoAnomaly
	}

	return &Detector{
		prices:  prices,
		scaler:  scaler,
		forest:  forest,
		encoder: encoder,
		history: txs,
		trained: true,
	}, nil
}

func featureVector(quantity, totalAmount, difference float64) []float64 {
	return []float64{quantity, totalAmount, difference}
}

// Anomalies returns every historical transaction flagged by either model.
func (d *Detector) Anomalies() []Transaction {
	var out []Transaction
	for _, t := range d.history {
		if t.AnomalyFlag {
			out = append(out, t)
		}
	}
	return out
}

// Detect checks a single new record against the frozen models. The SKU must
// exist in the catalog the detector was trained with.
func (d *Detector) Detect(sku records.SKU, quantity, totalAmount float64) (*Detection, error) {
	if d == nil || !d.trained {
		return nil, records.ErrNotTrained
	}
	price, ok := d.prices[sku]
	if !ok {
		return nil, fmt.Errorf("sku %s: %w", sku, records.ErrNotFound)
	}
	expected := price * quantity
	row := d.scaler.Transform(featureVector(quantity, totalAmount, totalAmount-expected))

	isoScore := d.forest.Decision(row)
	isoPred := 1
	if d.forest.IsAnomaly(row) {
		isoPred = -1
	}
	autoErr := d.encoder.ReconstructionError(row)

	return &Detection{
		IsoScore:              isoScore,
		IsoPrediction:         isoPred,
		AutoencoderError:      autoErr,
		IsAnomaly:             isoPred == -1 || autoErr > d.encoder.ErrorThreshold,
		AnomalousTransactions: d.Anomalies(),
	}, nil
}
