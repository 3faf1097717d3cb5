package common

const (
	KEY_CHURN_ARTIFACT = "artifact:churn"
	KEY_SALES_ARTIFACT = "artifact:sales"

	KEY_ANALYTICS_CHURN         = "analytics:churn"
	KEY_ANALYTICS_SALES         = "analytics:sales"
	KEY_ANALYTICS_TOP_RISK      = "analytics:top_churn_risk"
	KEY_ANALYTICS_TOP_SELLING   = "analytics:top_selling"
	KEY_ANALYTICS_CHURN_INSIGHT = "analytics:churn_insight"
)

const (
	PIPELINE_CHURN = "churn"
	PIPELINE_SALES = "sales"
)

const (
	TABLE_CHURN_PREDICTIONS = "churn_predictions"
	TABLE_SALES_FORECASTS   = "sales_forecasts"
)
