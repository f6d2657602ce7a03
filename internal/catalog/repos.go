package catalog

import (
	"embed"
	"path"
)

//go:embed readmes/*.md
var readmeFS embed.FS

type repoEntry struct {
	name        string
	description string
	files       []string
}

var repoEntries = []repoEntry{
	{
		name:        "retail-sales-etl",
		description: "Retail Sales ETL (CSV->S3->Glue->Athena)",
		files: []string{
			"data_samples/.gitkeep",
			"glue_jobs/transform_sales.py",
			"notebooks/exploration.ipynb",
			"scripts/data_ingestion.py",
			"architecture/diagram.png",
		},
	},
	{
		name:        "sales-data-warehouse",
		description: "Sales Data Warehouse on Redshift + QuickSight",
		files: []string{
			"schema/star_schema.sql",
			"etl_scripts/load_to_redshift.sql",
			"dashboards/sales_dashboard.png",
		},
	},
	{
		name:        "covid-dataops-pipeline",
		description: "COVID Data Lake with Airflow + CodePipeline",
		files: []string{
			"dags/covid_pipeline_dag.py",
			"glue_jobs/covid_transform.py",
			"ci-cd/buildspec.yml",
			"architecture/diagram.png",
		},
	},
	{
		name:        "log-analytics-spark",
		description: "Log Analytics with PySpark on EMR/Databricks",
		files: []string{
			"spark_jobs/parse_logs.py",
			"notebooks/log_analysis.ipynb",
			"architecture/diagram.png",
		},
	},
	{
		name:        "clickstream-realtime-analytics",
		description: "Real-Time Clickstream Analytics (Kinesis->Spark->Redshift)",
		files: []string{
			"event_producer/generate_events.py",
			"lambda/process_stream.py",
			"spark_jobs/streaming_agg.py",
			"dashboards/realtime_dashboard.png",
			"architecture/diagram.png",
		},
	},
	{
		name:        "ecommerce-data-platform",
		description: "Capstone: End-to-End E-commerce Data Platform (Batch + Streaming)",
		files: []string{
			"dags/README.md",
			"glue_jobs/README.md",
			"spark_jobs/README.md",
			"lambda/README.md",
			"dashboards/overview.png",
			"architecture/diagram.png",
		},
	},
}

var starterContent = map[string]string{
	"glue_jobs/transform_sales.py": `# PySpark Glue job skeleton
from awsglue.context import GlueContext
from awsglue.utils import getResolvedOptions
from pyspark.context import SparkContext

# TODO: add transforms
`,
	"scripts/data_ingestion.py": `# Upload files to S3 using boto3
# python scripts/data_ingestion.py --bucket <name> --path data_samples/
`,
	"dags/covid_pipeline_dag.py": `# Airflow DAG skeleton
from airflow import DAG
from datetime import datetime
# TODO: define tasks/operators
`,
	"glue_jobs/covid_transform.py": "# Glue transform for COVID data\n",
	"ci-cd/buildspec.yml": `version: 0.2
phases:
  build:
    commands:
      - echo Deploy DAGs / Glue jobs
`,
	"spark_jobs/parse_logs.py": `# PySpark job to parse logs
from pyspark.sql import SparkSession
# TODO: parse NASA logs
`,
	"event_producer/generate_events.py": `# Synthetic clickstream generator
# TODO: implement event generation to Kinesis
`,
	"lambda/process_stream.py": `# AWS Lambda handler for Kinesis records
# TODO: implement processing
`,
	"spark_jobs/streaming_agg.py": `# Spark Structured Streaming aggregation
# TODO: implement streaming aggregations
`,
}

const emptyNotebook = `{
 "cells": [],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 5
}
`

// StarterContent returns the placeholder body for a scaffolded file.
// Images and .gitkeep markers are empty.
func StarterContent(p string) string {
	if c, ok := starterContent[p]; ok {
		return c
	}
	switch path.Ext(p) {
	case ".png", ".jpg":
		return ""
	case ".ipynb":
		return emptyNotebook
	case ".sql":
		return "-- TODO\n"
	}
	if path.Base(p) == ".gitkeep" {
		return ""
	}
	return "# TODO\n"
}

// Readme returns the README body for a catalog repository, or a one-line
// heading for unknown names.
func Readme(name string) string {
	data, err := readmeFS.ReadFile("readmes/" + name + ".md")
	if err != nil {
		return "# " + name + "\n"
	}
	return string(data)
}

// Repos returns the six scaffold repositories in provisioning order. Each
// definition starts with README.md followed by its placeholder files.
func Repos(private bool) []RepoSpec {
	out := make([]RepoSpec, 0, len(repoEntries))
	for _, e := range repoEntries {
		files := make([]File, 0, len(e.files)+1)
		files = append(files, File{Path: "README.md", Content: Readme(e.name)})
		for _, f := range e.files {
			files = append(files, File{Path: f, Content: StarterContent(f)})
		}
		out = append(out, RepoSpec{
			Name:        e.name,
			Description: e.description,
			Files:       files,
			Private:     private,
		})
	}
	return out
}

// RepoNames returns the catalog repository names in order.
func RepoNames() []string {
	names := make([]string, len(repoEntries))
	for i, e := range repoEntries {
		names[i] = e.name
	}
	return names
}
