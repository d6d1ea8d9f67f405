package services

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "skillvet/internal/errors"
	"skillvet/internal/types"
)

// Answer verdict thresholds on the found-keyword ratio.
const (
	strongRatio   = 0.7
	moderateRatio = 0.4
)

var (
	skillNormalizer = regexp.MustCompile(`[^a-z0-9]+`)
	textNormalizer  = regexp.MustCompile(`[^a-z0-9\s]+`)
)

// skillAliases folds common skill spellings onto one bank key.
var skillAliases = map[string]string{
	"ml":                     "ml",
	"machinelearning":        "ml",
	"artificialintelligence": "ml",
	"ai":                     "ml",
	"py":                     "python",
	"python3":                "python",
	"js":                     "javascript",
	"ecmascript":             "javascript",
}

// bankQuestion is the on-disk question shape, including the scoring fields
// never exposed through the QuestionBank interface.
type bankQuestion struct {
	ID       string   `json:"id"`
	Level    string   `json:"level"`
	Question string   `json:"question"`
	Keywords []string `json:"keywords"`
	Marks    float64  `json:"marks"`
}

// bankFile is one loaded question bank.
type bankFile struct {
	skill     string
	questions []bankQuestion
	keys      map[string]bool
}

// LocalBank serves question pools from JSON files on disk so verification
// works without the remote question bank. Files hot-reload on change.
type LocalBank struct {
	dir    string
	logger *apperrors.Logger

	mu    sync.RWMutex
	banks []*bankFile

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopChan      chan struct{}
	running       bool
}

// NewLocalBank loads all bank files under dir. The directory may be empty;
// unknown skills simply resolve to no bank.
func NewLocalBank(dir string, logger *apperrors.Logger) (*LocalBank, error) {
	b := &LocalBank{
		dir:           dir,
		logger:        logger,
		debounceDelay: time.Second,
		stopChan:      make(chan struct{}),
	}
	if err := b.reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// normalizeSkill strips everything but lowercase alphanumerics.
func normalizeSkill(value string) string {
	return skillNormalizer.ReplaceAllString(strings.ToLower(value), "")
}

// normalizeText lowercases and flattens punctuation to spaces for keyword
// matching.
func normalizeText(value string) string {
	return textNormalizer.ReplaceAllString(strings.ToLower(value), " ")
}

// reload re-reads every bank file under the directory. Unreadable or
// malformed files are skipped, not fatal.
func (b *LocalBank) reload() error {
	entries, err := filepath.Glob(filepath.Join(b.dir, "*.json"))
	if err != nil {
		return apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to list question bank files",
			err,
		).WithContext("dir", b.dir)
	}

	var banks []*bankFile
	for _, path := range entries {
		raw, err := os.ReadFile(path)
		if err != nil {
			b.logger.Warn("Skipping unreadable question bank file", "file", path, "error", err)
			continue
		}

		var data struct {
			Skill     string         `json:"skill"`
			Questions []bankQuestion `json:"questions"`
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			b.logger.Warn("Skipping malformed question bank file", "file", path, "error", err)
			continue
		}
		if len(data.Questions) == 0 {
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		skill := strings.TrimSpace(data.Skill)
		if skill == "" {
			skill = stem
		}
		banks = append(banks, &bankFile{
			skill:     skill,
			questions: data.Questions,
			keys: map[string]bool{
				normalizeSkill(stem):  true,
				normalizeSkill(skill): true,
			},
		})
	}

	b.mu.Lock()
	b.banks = banks
	b.mu.Unlock()

	b.logger.Info("Question banks loaded", "dir", b.dir, "banks", len(banks))
	return nil
}

// resolve finds the bank serving skill, following aliases.
func (b *LocalBank) resolve(skill string) *bankFile {
	normalized := normalizeSkill(skill)
	target := normalized
	if alias, ok := skillAliases[normalized]; ok {
		target = alias
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, bank := range b.banks {
		if bank.keys[normalized] || bank.keys[target] {
			return bank
		}
	}
	return nil
}

// GetQuestions implements QuestionBank.
func (b *LocalBank) GetQuestions(ctx context.Context, skill string) ([]types.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bank := b.resolve(skill)
	if bank == nil {
		return nil, apperrors.NewServiceError(
			apperrors.ErrCodeBankUnavailable,
			"no question bank found for skill",
			nil,
		).WithContext("skill", skill)
	}

	var questions []types.Question
	for _, q := range bank.questions {
		id := strings.TrimSpace(q.ID)
		text := strings.TrimSpace(q.Question)
		if id == "" || text == "" {
			continue
		}
		questions = append(questions, types.Question{
			ID:       id,
			Level:    strings.TrimSpace(q.Level),
			Question: text,
		})
	}
	return questions, nil
}

// ScoreAnswer implements QuestionBank with keyword-ratio scoring.
func (b *LocalBank) ScoreAnswer(ctx context.Context, skill, questionID, answer string) (*types.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bank := b.resolve(skill)
	if bank == nil {
		return nil, apperrors.NewServiceError(
			apperrors.ErrCodeBankUnavailable,
			"no question bank found for skill",
			nil,
		).WithContext("skill", skill)
	}

	var target *bankQuestion
	for i := range bank.questions {
		if strings.TrimSpace(bank.questions[i].ID) == questionID {
			target = &bank.questions[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewValidationError(
			apperrors.ErrCodeInvalidRequest,
			"question id not found",
			nil,
		).WithContext("questionId", questionID)
	}

	marks := target.Marks
	if marks <= 0 {
		marks = float64(max(1, len(target.Keywords)))
	}

	result := scoreKeywords(answer, target.Keywords, marks)
	result.ExpectedKeywords = target.Keywords
	result.ExpectedAnswer = strings.Join(target.Keywords, ", ")
	return result, nil
}

// scoreKeywords computes the found/missing split and the derived score
// fields for one answer.
func scoreKeywords(answer string, keywords []string, marks float64) *types.ScoreResult {
	cleaned := normalizeText(answer)

	found := []string{}
	missing := []string{}
	for _, keyword := range keywords {
		key := strings.TrimSpace(normalizeText(keyword))
		if key == "" {
			continue
		}
		if strings.Contains(cleaned, key) {
			found = append(found, keyword)
		} else {
			missing = append(missing, keyword)
		}
	}

	total := len(found) + len(missing)
	ratio := 0.0
	if total > 0 {
		ratio = float64(len(found)) / float64(total)
	}

	verdict := "Needs Improvement"
	switch {
	case ratio >= strongRatio:
		verdict = "Strong"
	case ratio >= moderateRatio:
		verdict = "Moderate"
	}

	return &types.ScoreResult{
		Percentage:      round2(ratio * 100),
		Verdict:         verdict,
		MarksAwarded:    round2(marks * ratio),
		TotalMarks:      marks,
		FoundKeywords:   found,
		MissingKeywords: missing,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MatchSkills resolves resume skills against the loaded banks, deduplicating
// by normalized key.
func (b *LocalBank) MatchSkills(ctx context.Context, skills []string) ([]types.MatchedSkill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := []types.MatchedSkill{}
	seen := map[string]bool{}
	for _, skill := range skills {
		normalized := normalizeSkill(skill)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true

		bank := b.resolve(skill)
		if bank == nil {
			continue
		}
		matched = append(matched, types.MatchedSkill{
			ResumeSkill:   skill,
			BankSkill:     bank.skill,
			QuestionCount: len(bank.questions),
		})
	}
	return matched, nil
}

// Stats exposes the bank state for the stats endpoint.
func (b *LocalBank) Stats() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return map[string]any{
		"mode":     "local",
		"dir":      b.dir,
		"banks":    len(b.banks),
		"watching": b.running,
	}
}

// IsHealthy reports whether any question banks are loaded.
func (b *LocalBank) IsHealthy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.banks) > 0
}

// Start begins watching the bank directory for changes.
func (b *LocalBank) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to create bank watcher",
			err,
		)
	}
	if err := watcher.Add(b.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			b.logger.LogError(closeErr, "Failed to close bank watcher during cleanup")
		}
		return apperrors.NewIOError(
			apperrors.ErrCodeFileNotReadable,
			"failed to watch question bank directory",
			err,
		).WithContext("dir", b.dir)
	}

	b.fsWatcher = watcher
	b.running = true
	go b.watchLoop()

	b.logger.Info("Question bank watcher started", "dir", b.dir, "debounce_delay", b.debounceDelay)
	return nil
}

// Stop halts the directory watcher.
func (b *LocalBank) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	close(b.stopChan)

	b.timerMu.Lock()
	if b.debounceTimer != nil {
		b.debounceTimer.Stop()
	}
	b.timerMu.Unlock()

	if err := b.fsWatcher.Close(); err != nil {
		b.logger.LogError(err, "Failed to close question bank watcher")
		return err
	}
	b.running = false
	return nil
}

func (b *LocalBank) watchLoop() {
	for {
		select {
		case event, ok := <-b.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) == ".json" &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				b.scheduleReload()
			}

		case err, ok := <-b.fsWatcher.Errors:
			if !ok {
				return
			}
			b.logger.LogError(err, "Question bank watcher error")

		case <-b.stopChan:
			return
		}
	}
}

// scheduleReload debounces bursts of file events into one reload.
func (b *LocalBank) scheduleReload() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()

	if b.debounceTimer != nil {
		b.debounceTimer.Stop()
	}
	b.debounceTimer = time.AfterFunc(b.debounceDelay, func() {
		b.logger.Info("Question bank files changed, reloading")
		if err := b.reload(); err != nil {
			b.logger.LogError(err, "Failed to reload question banks")
		}
	})
}
