package usecase

import "strings"

const CategoryGeneral = "general"

type categoryRule struct {
	category string
	keywords []string
}

// categoryRules are checked in order; the first rule with any matching
// keyword wins. Keywords match as plain substrings, so "ai" also matches
// "maintain".
var categoryRules = []categoryRule{
	{category: "python", keywords: []string{"python"}},
	{category: "dsa", keywords: []string{"data structure", "algorithm", "dsa"}},
	{category: "ml", keywords: []string{"machine learning", "ml", "ai"}},
	{category: "frontend", keywords: []string{"react", "javascript", "frontend"}},
	{category: "backend", keywords: []string{"node.js", "express", "backend"}},
	{category: "database", keywords: []string{"database", "sql", "mongodb"}},
	{category: "devops", keywords: []string{"devops", "aws", "docker", "kubernetes"}},
	{category: "product_management", keywords: []string{"product manager", "pm"}},
	{category: "data_analysis", keywords: []string{"data analyst", "analytics"}},
}

// InferCategory maps a job description to the cache category of its
// behavioral questions. It never fails.
func InferCategory(jobDescription string) string {
	jd := strings.ToLower(jobDescription)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(jd, keyword) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}
