package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"skillvet/internal/events"
	"skillvet/internal/history"
	"skillvet/internal/observability"
	"skillvet/internal/services"
	"skillvet/internal/store"
	"skillvet/internal/types"
	"skillvet/internal/verify"
)

// createAnalyzeHandler accepts a multipart resume upload, proxies it to the
// analysis collaborator, and parks the report for later feedback aggregation.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid upload", "multipart form with a 'file' part is required", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume file", "'file' form field is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read upload", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.file_name", header.Filename),
			attribute.Int("request.file_size", len(content)),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()
		var report *types.AnalysisReport
		err = metrics.TrackCollaboratorOperation(ctx, "analyze", func(ctx context.Context) error {
			var opErr error
			report, opErr = s.Deps.Analysis.Analyze(ctx, header.Filename, content)
			return opErr
		})
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false,
				attribute.String("error", err.Error()))
			s.writeAppError(w, err, "Failed to analyze resume")
			return
		}

		// Park the report so /skills/match and /feedback can pick it up.
		if err := store.SetJSON(ctx, s.Deps.SessionStore, history.ReportKey, report); err != nil {
			s.Logger.LogError(err, "failed to store analysis report", "file", header.Filename)
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true,
			attribute.Int("skills", len(report.Skills)),
			attribute.Float64("overall_score", report.OverallScore))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.skills", len(report.Skills)),
		)

		writeJSONResponse(w, report, span)
	}
}

// createTemplatesHandler returns the resume template catalog.
func (s *Server) createTemplatesHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.templates")
		defer span.End()

		metrics := om.GetMetrics()
		var list *types.TemplateList
		err := metrics.TrackCollaboratorOperation(ctx, "templates", func(ctx context.Context) error {
			var opErr error
			list, opErr = s.Deps.Analysis.ListTemplates(ctx)
			return opErr
		})
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err, "Failed to fetch templates")
			return
		}

		span.SetAttributes(attribute.Int("response.templates", len(list.Templates)))
		writeJSONResponse(w, list, span)
	}
}

// createMatchSkillsHandler maps resume skills onto bank skills and annotates
// each match with the detected exposure level.
func (s *Server) createMatchSkillsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.match_skills")
		defer span.End()

		var req MatchSkillsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Skills) == 0 {
			writeErrorResponse(w, "Missing skills", "skills field must not be empty", http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		var matched []types.MatchedSkill
		err := metrics.TrackCollaboratorOperation(ctx, "match_skills", func(ctx context.Context) error {
			var opErr error
			matched, opErr = s.Deps.Analysis.MatchSkills(ctx, req.Skills)
			return opErr
		})
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err, "Failed to match skills")
			return
		}

		// Levels come from the parked analysis report; a missing report reads
		// every skill as Beginner.
		var report types.AnalysisReport
		if ok, err := store.GetJSON(ctx, s.Deps.SessionStore, history.ReportKey, &report); err == nil && ok {
			matched = services.AnnotateLevels(matched, &report)
		} else {
			matched = services.AnnotateLevels(matched, nil)
		}

		span.SetAttributes(
			attribute.Int("request.skills", len(req.Skills)),
			attribute.Int("response.matched", len(matched)),
		)
		writeJSONResponse(w, map[string]any{"skills": matched}, span)
	}
}

// createStartVerifyHandler starts an adaptive verification session.
func (s *Server) createStartVerifyHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.verify_start")
		defer span.End()

		var req StartVerifyRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Skill) == "" {
			writeErrorResponse(w, "Missing skill", "skill field is required", http.StatusBadRequest)
			return
		}

		startBand := verify.MapLevel(s.AppConfig.Verify.StartBand)
		if req.StartBand != "" {
			startBand = verify.MapLevel(req.StartBand)
		}
		count := req.QuestionCount
		if count <= 0 {
			count = s.AppConfig.Verify.DefaultQuestionCount
		}

		span.SetAttributes(
			attribute.String("request.skill", req.Skill),
			attribute.String("request.start_band", string(startBand)),
			attribute.Int("request.question_count", count),
			attribute.String("operation", "verify_start"),
		)

		metrics := om.GetMetrics()
		session, err := verify.StartSession(ctx, verify.SessionConfig{
			Skill:        req.Skill,
			StartBand:    startBand,
			TargetCount:  count,
			Questions:    s.Deps.Bank,
			Selector:     s.Deps.Selector,
			Recency:      s.Deps.Recency,
			SessionStore: s.Deps.SessionStore,
			Logger:       s.Logger,
		})
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "session_started", false,
				attribute.String("skill", req.Skill))
			s.writeAppError(w, err, "Failed to start session")
			return
		}

		id := s.Deps.Registry.Add(session)
		metrics.RecordBusinessMetric(ctx, "session_started", true,
			attribute.String("skill", session.Skill()))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", id),
			attribute.String("session.state", string(session.State())),
		)
		writeJSONResponse(w, sessionView(id, session, false), span)
	}
}

// createAnswerHandler scores one answer and advances the session.
func (s *Server) createAnswerHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.verify_answer")
		defer span.End()

		id := r.PathValue("id")
		var req AnswerRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", id),
			attribute.String("operation", "verify_answer"),
		)

		metrics := om.GetMetrics()
		var resp SessionResponse
		var completed *types.InterviewSummary
		err := s.Deps.Registry.With(id, func(session *verify.Session) error {
			if err := session.SubmitAnswer(ctx, req.Answer); err != nil {
				return err
			}
			resp = sessionView(id, session, true)
			if session.State().Terminal() {
				summary := session.Summary()
				resp.Summary = &summary
				completed = &summary
			}
			return nil
		})
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "answer_scored", false,
				attribute.String("session_id", id))
			s.writeAppError(w, err, "Failed to submit answer")
			return
		}

		// Published outside the session lock; a slow broker must not stretch
		// the lock hold.
		if completed != nil {
			s.Deps.Events.Publish(events.NewSessionCompleted(*completed))
			metrics.RecordBusinessMetric(ctx, "session_completed", true,
				attribute.String("skill", completed.Skill),
				attribute.Int("total_score", completed.TotalScore))
		}

		metrics.RecordBusinessMetric(ctx, "answer_scored", true)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.state", resp.State),
		)
		writeJSONResponse(w, resp, span)
	}
}

// createGetSessionHandler returns a snapshot of one session.
func (s *Server) createGetSessionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracer := om.Tracer("skillvet.api")
		_, span := tracer.Start(r.Context(), "api.verify_get")
		defer span.End()

		id := r.PathValue("id")
		span.SetAttributes(attribute.String("session.id", id))

		var resp SessionResponse
		err := s.Deps.Registry.With(id, func(session *verify.Session) error {
			resp = sessionView(id, session, true)
			if session.State().Terminal() {
				summary := session.Summary()
				resp.Summary = &summary
			}
			return nil
		})
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err, "Failed to load session")
			return
		}

		writeJSONResponse(w, resp, span)
	}
}

// createFeedbackHandler aggregates the parked analysis report and interview
// summary into durable history and derived feedback.
func (s *Server) createFeedbackHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.feedback")
		defer span.End()

		var report *types.AnalysisReport
		var stored types.AnalysisReport
		if ok, err := store.GetJSON(ctx, s.Deps.SessionStore, history.ReportKey, &stored); err == nil && ok {
			report = &stored
		}

		var summary *types.InterviewSummary
		var storedSummary types.InterviewSummary
		if ok, err := store.GetJSON(ctx, s.Deps.SessionStore, verify.SummaryKey, &storedSummary); err == nil && ok {
			summary = &storedSummary
		}

		if report == nil && summary == nil {
			writeErrorResponse(w, "Nothing to aggregate", "no analysis report or interview summary found", http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		feedback, err := s.Deps.History.Record(ctx, report, summary)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "history_appended", false)
			s.writeAppError(w, err, "Failed to record history")
			return
		}

		if entries, err := s.Deps.History.Entries(ctx); err == nil && len(entries) > 0 {
			s.Deps.Events.Publish(events.NewHistoryAppended(entries[len(entries)-1]))
		}

		metrics.RecordBusinessMetric(ctx, "history_appended", true,
			attribute.Int("final_score", feedback.FinalScore))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.final_score", feedback.FinalScore),
		)
		writeJSONResponse(w, feedback, span)
	}
}

// createHistoryHandler lists aggregate history entries.
func (s *Server) createHistoryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.history")
		defer span.End()

		entries, err := s.Deps.History.Entries(ctx)
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err, "Failed to load history")
			return
		}

		delta, err := s.Deps.History.Delta(ctx)
		if err != nil {
			s.Logger.LogError(err, "failed to compute history delta")
		}

		span.SetAttributes(attribute.Int("response.entries", len(entries)))
		resp := map[string]any{"entries": entries}
		if delta != nil {
			resp["delta"] = *delta
		}
		writeJSONResponse(w, resp, span)
	}
}

// createAttemptsHandler lists detailed verification attempts.
func (s *Server) createAttemptsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.history_attempts")
		defer span.End()

		attempts, err := s.Deps.History.Attempts(ctx)
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err, "Failed to load attempts")
			return
		}

		span.SetAttributes(attribute.Int("response.attempts", len(attempts)))
		writeJSONResponse(w, map[string]any{"attempts": attempts}, span)
	}
}

// createGenerateHandler renders a resume form into a downloadable document.
func (s *Server) createGenerateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("skillvet.api")
		ctx, span := tracer.Start(ctx, "api.generate")
		defer span.End()

		var form types.ResumeForm
		if err := parseJSONRequest(r, &form); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		var doc *types.GeneratedDocument
		err := metrics.TrackCollaboratorOperation(ctx, "generate", func(ctx context.Context) error {
			var opErr error
			doc, opErr = s.Deps.DocGen.Generate(ctx, form)
			return opErr
		})
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "document_generated", false)
			s.writeAppError(w, err, "Failed to generate document")
			return
		}

		metrics.RecordBusinessMetric(ctx, "document_generated", true,
			attribute.Int("size_bytes", len(doc.Data)))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("response.file_name", doc.FileName),
			attribute.Int("response.size_bytes", len(doc.Data)),
		)

		contentType := doc.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
		if _, err := w.Write(doc.Data); err != nil {
			s.Logger.LogError(err, "failed to write generated document", "file", doc.FileName)
		}
	}
}

// sessionView builds the wire view of a session. includeLast attaches the most
// recent answer record.
func sessionView(id string, session *verify.Session, includeLast bool) SessionResponse {
	current, target := session.Progress()
	resp := SessionResponse{
		SessionID:      id,
		State:          string(session.State()),
		Skill:          session.Skill(),
		Band:           string(session.CurrentBand()),
		QuestionNumber: current,
		TargetCount:    target,
		Question:       session.CurrentQuestion(),
	}
	if includeLast {
		if records := session.Records(); len(records) > 0 {
			last := records[len(records)-1]
			resp.LastAnswer = &last
		}
	}
	return resp
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
