package catalog

const (
	superstoreURL = "https://www.kaggle.com/datasets/vivek468/superstore-dataset-final"
	covidURL      = "https://github.com/CSSEGISandData/COVID-19"
	nasaLogsURL   = "https://www.kaggle.com/datasets/loganalyst/nasa-access-log"
)

var planItems = []PlanItem{
	// Month 1: SQL, ETL Basics & AWS Fundamentals
	{
		Week:       1,
		Month:      1,
		Title:      "SQL basics + practice (50 problems)",
		Project:    "Month 1: SQL, ETL Basics & AWS Fundamentals",
		Details:    "- Learn SELECT, WHERE, GROUP BY, JOINs, aggregate functions\n- Resources: LeetCode Database problems, SQLZoo, Mode Analytics SQL tutorials\n- Deliverable: Solve 50 SQL problems",
		DatasetURL: superstoreURL,
		Repo:       "retail-sales-etl",
	},
	{
		Week:       2,
		Month:      1,
		Title:      "Python Pandas + boto3, Upload to S3",
		Project:    "Month 1: SQL, ETL Basics & AWS Fundamentals",
		Details:    "- Learn dataframes, cleaning, joins in Pandas\n- Learn boto3 basics (upload, download, list S3 objects)\n- Deliverable: Python script to clean CSV data and upload to S3 bucket",
		DatasetURL: superstoreURL,
		Repo:       "retail-sales-etl",
	},
	{
		Week:       3,
		Month:      1,
		Title:      "Glue basics + Athena querying",
		Project:    "Month 1: SQL, ETL Basics & AWS Fundamentals",
		Details:    "- Learn AWS Glue (crawlers, jobs)\n- Learn Athena (querying S3 data with SQL)\n- Deliverable: Create a Glue crawler + query S3 dataset with Athena",
		DatasetURL: superstoreURL,
		Repo:       "retail-sales-etl",
	},
	{
		Week:       4,
		Month:      1,
		Title:      "Build ETL end-to-end",
		Project:    "Month 1: SQL, ETL Basics & AWS Fundamentals",
		Details:    "- Combine S3 + Glue + Athena\n- Deliverable: Ingest CSV -> S3 -> Glue -> Athena query",
		DatasetURL: superstoreURL,
		Repo:       "retail-sales-etl",
	},
	// Month 2: Data Warehousing
	{
		Week:       5,
		Month:      2,
		Title:      "Design star schema (fact/dims)",
		Project:    "Month 2: Data Warehousing",
		Details:    "- Learn dimensional modeling (Kimball's approach)\n- Deliverable: Create ERD for Sales dataset (fact_sales, dim_customer, dim_product)",
		DatasetURL: superstoreURL,
		Repo:       "sales-data-warehouse",
	},
	{
		Week:       6,
		Month:      2,
		Title:      "Load to Redshift with COPY",
		Project:    "Month 2: Data Warehousing",
		Details:    "- Learn Redshift basics + COPY command from S3\n- Deliverable: Load Sales data into Redshift fact/dim tables",
		DatasetURL: superstoreURL,
		Repo:       "sales-data-warehouse",
	},
	{
		Week:       7,
		Month:      2,
		Title:      "Complex SQL (window functions, CTEs, performance tuning)",
		Project:    "Month 2: Data Warehousing",
		Details:    "- Learn ROW_NUMBER, RANK, LEAD/LAG, recursive queries\n- Deliverable: Write 10 analytical queries",
		DatasetURL: superstoreURL,
		Repo:       "sales-data-warehouse",
	},
	{
		Week:       8,
		Month:      2,
		Title:      "QuickSight dashboard",
		Project:    "Month 2: Data Warehousing",
		Details:    "- Learn Amazon QuickSight basics\n- Deliverable: Build sales performance dashboard",
		DatasetURL: superstoreURL,
		Repo:       "sales-data-warehouse",
	},
	// Month 3: Data Pipelines & Automation
	{
		Week:       9,
		Month:      3,
		Title:      "Airflow DAG (daily COVID data -> S3)",
		Project:    "Month 3: Data Pipelines & Automation",
		Details:    "- Learn Airflow basics (DAGs, operators, scheduling)\n- Deliverable: DAG that fetches daily COVID API -> stores in S3",
		DatasetURL: covidURL,
		Repo:       "covid-dataops-pipeline",
	},
	{
		Week:       10,
		Month:      3,
		Title:      "Add Glue transform + Redshift load",
		Project:    "Month 3: Data Pipelines & Automation",
		Details:    "- Extend DAG: ingest -> transform with Glue -> load into Redshift\n- Deliverable: Complete ETL pipeline with monitoring",
		DatasetURL: covidURL,
		Repo:       "covid-dataops-pipeline",
	},
	{
		Week:       11,
		Month:      3,
		Title:      "CI/CD (Bitbucket + CodePipeline)",
		Project:    "Month 3: Data Pipelines & Automation",
		Details:    "- Learn version control for Airflow DAGs\n- Deliverable: Set up Git -> CodePipeline for Airflow project",
		DatasetURL: covidURL,
		Repo:       "covid-dataops-pipeline",
	},
	{
		Week:       12,
		Month:      3,
		Title:      "Monitoring with CloudWatch alerts",
		Project:    "Month 3: Data Pipelines & Automation",
		Details:    "- Set up CloudWatch metrics for S3/Glue/Redshift\n- Deliverable: Trigger alert when job fails",
		DatasetURL: covidURL,
		Repo:       "covid-dataops-pipeline",
	},
	// Month 4: Big Data Processing
	{
		Week:       13,
		Month:      4,
		Title:      "PySpark basics (DataFrames/RDDs)",
		Project:    "Month 4: Big Data Processing",
		Details:    "- Learn Spark DataFrame ops, transformations, actions\n- Deliverable: Clean & aggregate logs dataset with PySpark",
		DatasetURL: nasaLogsURL,
		Repo:       "log-analytics-spark",
	},
	{
		Week:       14,
		Month:      4,
		Title:      "Run job on EMR/Databricks",
		Project:    "Month 4: Big Data Processing",
		Details:    "- Learn how to run PySpark jobs on EMR\n- Deliverable: Submit PySpark job to EMR",
		DatasetURL: nasaLogsURL,
		Repo:       "log-analytics-spark",
	},
	{
		Week:       15,
		Month:      4,
		Title:      "Aggregations: top URLs, errors, traffic/hour",
		Project:    "Month 4: Big Data Processing",
		Details:    "- Advanced Spark analytics\n- Deliverable: Spark job that produces log analytics summary",
		DatasetURL: nasaLogsURL,
		Repo:       "log-analytics-spark",
	},
	{
		Week:       16,
		Month:      4,
		Title:      "Store to S3 + query in Athena (compare performance)",
		Project:    "Month 4: Big Data Processing",
		Details:    "- Performance optimization techniques\n- Deliverable: Output aggregated logs to S3, query with Athena",
		DatasetURL: nasaLogsURL,
		Repo:       "log-analytics-spark",
	},
	// Month 5: Real-Time Streaming
	{
		Week:    17,
		Month:   5,
		Title:   "Kinesis basics + event producer",
		Project: "Month 5: Real-Time Streaming",
		Details: "- Learn Kinesis Data Streams fundamentals\n- Deliverable: Push dummy event data into Kinesis stream",
		Repo:    "clickstream-realtime-analytics",
	},
	{
		Week:    18,
		Month:   5,
		Title:   "Lambda -> S3 (raw events)",
		Project: "Month 5: Real-Time Streaming",
		Details: "- Build serverless data ingestion\n- Deliverable: Lambda function that consumes Kinesis -> stores to S3",
		Repo:    "clickstream-realtime-analytics",
	},
	{
		Week:    19,
		Month:   5,
		Title:   "Spark Structured Streaming aggregations",
		Project: "Month 5: Real-Time Streaming",
		Details: "- Real-time data processing with Spark\n- Deliverable: Real-time aggregation of streaming events",
		Repo:    "clickstream-realtime-analytics",
	},
	{
		Week:    20,
		Month:   5,
		Title:   "QuickSight live dashboard",
		Project: "Month 5: Real-Time Streaming",
		Details: "- Real-time visualization and monitoring\n- Deliverable: Real-time dashboard on clickstream data",
		Repo:    "clickstream-realtime-analytics",
	},
	// Month 6: Capstone Projects
	{
		Week:    21,
		Month:   6,
		Title:   "E-commerce Data Platform: Define architecture (batch + streaming)",
		Project: "Month 6: Capstone Projects",
		Details: "- Design complete data platform architecture\n- Architecture: Batch ETL (Glue -> Redshift + Airflow DAG)\n- Streaming (Kinesis -> Lambda -> S3 + Spark Streaming)\n- Reporting (QuickSight dashboard)\n- Deliverable: Architecture diagram + GitHub repo + Resume bullets",
		Repo:    "ecommerce-data-platform",
	},
	{
		Week:    22,
		Month:   6,
		Title:   "E-commerce Data Platform: Build batch ETL (S3->Glue->Redshift) + DAG",
		Project: "Month 6: Capstone Projects",
		Details: "- Implement batch processing pipeline\n- Deliverable: Complete batch ETL with Airflow orchestration and data quality checks",
		Repo:    "ecommerce-data-platform",
	},
	{
		Week:    23,
		Month:   6,
		Title:   "E-commerce Data Platform: Add streaming (Kinesis->Spark->Redshift)",
		Project: "Month 6: Capstone Projects",
		Details: "- Implement real-time processing\n- Deliverable: Real-time streaming pipeline with monitoring and alerting",
		Repo:    "ecommerce-data-platform",
	},
	{
		Week:    24,
		Month:   6,
		Title:   "E-commerce Data Platform: Docs + Repo polish + Resume bullets",
		Project: "Month 6: Capstone Projects",
		Details: "- Finalize project documentation and portfolio\n- Deliverable: Complete documentation, polished GitHub repo, QuickSight reporting dashboard, and resume bullets highlighting your data engineering skills",
		Repo:    "ecommerce-data-platform",
	},
}

// Plan returns the 24-week learning plan. Repository links resolve against
// owner so rows can be written before the repositories exist.
func Plan(owner string) []PlanItem {
	out := make([]PlanItem, len(planItems))
	copy(out, planItems)
	for i := range out {
		out[i].Status = StatusNotStarted
		if out[i].Repo != "" && owner != "" {
			out[i].RepoURL = RepoURL(owner, out[i].Repo)
		}
	}
	return out
}
