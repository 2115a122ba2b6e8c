package customers

// RFMRow is the per-vendor recency/frequency/monetary scoring result.
type RFMRow struct {
	Recency        int     `json:"recency"`
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	RFMScore       string  `json:"rfm_score"`
	ValueSegment   string  `json:"value_segment"`
}

// Profile statically enumerates the per-vendor feature vector, one field per
// aggregation, so a schema shift breaks at compile time instead of at a map
// lookup.
type Profile struct {
	SpendSum        float64 `json:"totalAmount_sum"`
	SpendMean       float64 `json:"totalAmount_mean"`
	SpendStd        float64 `json:"totalAmount_std"`
	QuantitySum     float64 `json:"quantity_sum"`
	QuantityMean    float64 `json:"quantity_mean"`
	Transactions    float64 `json:"billNumber_count"`
	DueFraction     float64 `json:"paymentType_due_mean"`
	WeekendFraction float64 `json:"isWeekend_mean"`
	ItemsPerTxMean  float64 `json:"itemsPerTransaction_mean"`
	ItemsPerTxMax   float64 `json:"itemsPerTransaction_max"`
	AvgItemPrice    float64 `json:"avgItemPrice_mean"`
	LifetimeValue   float64 `json:"lifetimeValue"`
}

// Segment is a vendor's profile plus its cluster assignment.
type Segment struct {
	Profile
	Cluster int `json:"Cluster"`
}

// SegmentationResult maps vendors to segments and clusters to mean-feature
// profiles.
type SegmentationResult struct {
	Segments map[string]Segment            `json:"segments"`
	Profiles map[string]map[string]float64 `json:"profiles"`
	K        int                           `json:"n_clusters"`
}

// TemporalPattern aggregates purchases for one day-of-week bucket.
type TemporalPattern struct {
	DayOfWeek    int     `json:"dayOfWeek"`
	IsWeekend    bool    `json:"isWeekend"`
	AmountMean   float64 `json:"totalAmount_mean"`
	Transactions int     `json:"totalAmount_count"`
	QuantityMean float64 `json:"quantity_mean"`
}

// ChurnMetrics is the held-out evaluation of the churn classifier.
type ChurnMetrics struct {
	AUC       float64 `json:"auc_score"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// ChurnResult reports the churn model: held-out metrics, importances, and
// full-population probabilities.
type ChurnResult struct {
	FeatureImportance  map[string]float64 `json:"feature_importance"`
	ChurnProbabilities map[string]float64 `json:"churn_probabilities"`
	Metrics            ChurnMetrics       `json:"metrics"`
}

// PaymentResult reports the payment-behavior predictors. The model itself is
// an input to other reports and is not exposed.
type PaymentResult struct {
	FeatureImportance map[string]float64 `json:"feature_importance"`
}
