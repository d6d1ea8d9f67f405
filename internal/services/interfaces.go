// Package services holds the clients for the external collaborators (resume
// analysis, question bank, document generation) and the offline local
// question-bank provider.
package services

import (
	"context"

	"skillvet/internal/types"
)

// AnalysisService is the resume analysis collaborator
type AnalysisService interface {
	Analyze(ctx context.Context, fileName string, content []byte) (*types.AnalysisReport, error)
	ListTemplates(ctx context.Context) (*types.TemplateList, error)
	MatchSkills(ctx context.Context, skills []string) ([]types.MatchedSkill, error)
}

// QuestionBank serves question pools and scores answers for a skill
type QuestionBank interface {
	GetQuestions(ctx context.Context, skill string) ([]types.Question, error)
	ScoreAnswer(ctx context.Context, skill, questionID, answer string) (*types.ScoreResult, error)
}

// DocumentGenerator renders structured resume fields into a document
type DocumentGenerator interface {
	Generate(ctx context.Context, form types.ResumeForm) (*types.GeneratedDocument, error)
}
