package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-reward-service/internal/app"
	"quiz-reward-service/internal/domain"
	"quiz-reward-service/internal/progress"
)

// Services are the use cases reachable over the websocket.
type Services struct {
	Quiz         *app.QuizService
	Progress     *app.ProgressService
	Leaderboards *app.LeaderboardService
	Badges       *app.BadgeService
	Certificates *app.CertificateService
}

type WSHandler struct {
	svc      Services
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(svc Services, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	SurveyID        string                    `json:"surveyId"`
	Answers         []domain.AnswerSubmission `json:"answers"`
	DurationSeconds int                       `json:"durationSeconds"`
}

type answerPayload struct {
	SurveyID         string `json:"surveyId"`
	QuestionID       string `json:"questionId"`
	Answer           any    `json:"answer"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Attempt          int    `json:"attempt"`
}

type surveyPayload struct {
	SurveyID string `json:"surveyId"`
	Attempt  int    `json:"attempt"`
}

type syncPayload struct {
	Progress map[string]any `json:"progress"`
}

type syllabusXPPayload struct {
	SyllabusID string `json:"syllabusId"`
	XP         int    `json:"xp"`
}

type lookupPayload struct {
	BadgeID       string `json:"badgeId"`
	CertificateID string `json:"certificateId"`
	SyllabusID    string `json:"syllabusId"`
}

type leaderboardPayload struct {
	Kind       string `json:"kind"` // "survey" or "xp"
	SurveyID   string `json:"surveyId"`
	SyllabusID string `json:"syllabusId"`
	Limit      int    `json:"limit"`
}

type reviewResult struct {
	WrongQuestions []domain.QuestionSpec `json:"wrongQuestions"`
	ReviewIDs      []string              `json:"reviewQuestionIds"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errBadPayload = errors.New("invalid payload")

// ServeWS upgrades HTTP requests to websockets and serves one user's requests on it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("user_id", userID))
	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Only the writer goroutine touches the connection for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "ready", Payload: map[string]string{"userId": userID}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		typ, payload, err := h.handle(r.Context(), userID, inbound)
		if err != nil {
			if !errors.Is(err, errBadPayload) {
				log.Info("ws request failed", zap.String("type", inbound.Type), zap.Error(err))
			}
			payload, typ = errorPayload{Message: err.Error()}, "error"
		}
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-writerDone:
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(ctx context.Context, userID string, in inboundMessage) (string, any, error) {
	switch in.Type {
	case "submit":
		var p submitPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Quiz.Submit(ctx, userID, p.SurveyID, p.Answers, p.DurationSeconds)
		return "submitResult", res, err
	case "grade":
		var p submitPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Quiz.Grade(ctx, p.SurveyID, p.Answers)
		return "gradeResult", res, err
	case "answer":
		var p answerPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Quiz.RecordAnswer(ctx, userID, p.SurveyID, p.QuestionID, p.Answer, p.TimeSpentSeconds, p.Attempt)
		return "answerResult", res, err
	case "finish":
		var p surveyPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Quiz.Finalize(ctx, userID, p.SurveyID, p.Attempt)
		return "finishResult", res, err
	case "attempts":
		var p surveyPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Quiz.CheckAttempts(ctx, userID, p.SurveyID)
		return "attempts", res, err
	case "review":
		var p surveyPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		wrong, err := h.svc.Quiz.WrongQuestions(ctx, userID, p.SurveyID)
		if err != nil {
			return "", nil, err
		}
		ids, err := h.svc.Quiz.ReviewQuestionIDs(ctx, userID, p.SurveyID)
		return "review", reviewResult{WrongQuestions: wrong, ReviewIDs: ids}, err
	case "sync":
		var p syncPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Progress.Sync(ctx, userID, progress.FromMap(p.Progress))
		return "progress", res, err
	case "getProgress":
		res, err := h.svc.Progress.Get(ctx, userID)
		return "progressSnapshot", res, err
	case "saveProgress":
		// Overwrites the stored snapshot, lists the sync merge keeps included.
		var p syncPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		snapshot := progress.FromMap(p.Progress)
		if err := h.svc.Progress.Save(ctx, userID, snapshot); err != nil {
			return "", nil, err
		}
		return "progressSnapshot", snapshot, nil
	case "addSyllabusXP":
		var p syllabusXPPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		if p.SyllabusID == "" {
			return "", nil, errBadPayload
		}
		res, err := h.svc.Progress.AddSyllabusXP(ctx, userID, p.SyllabusID, p.XP)
		return "progressSnapshot", res, err
	case "leaderboard":
		var p leaderboardPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		if p.Kind == "survey" {
			res, err := h.svc.Leaderboards.Survey(ctx, p.SurveyID, p.Limit, userID)
			return "leaderboard", res, err
		}
		res, err := h.svc.Leaderboards.XP(ctx, userID, p.SyllabusID, p.Limit)
		return "leaderboard", res, err
	case "badges":
		res, err := h.svc.Badges.UserBadges(ctx, userID)
		return "badges", res, err
	case "badge":
		var p lookupPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Badges.Badge(ctx, p.BadgeID)
		return "badge", res, err
	case "certificates":
		res, err := h.svc.Certificates.UserCertificates(ctx, userID)
		return "certificates", res, err
	case "certificate":
		var p lookupPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Certificates.Certificate(ctx, p.CertificateID)
		return "certificate", res, err
	case "syllabusCertificates":
		var p lookupPayload
		if err := decode(in.Payload, &p); err != nil {
			return "", nil, err
		}
		res, err := h.svc.Certificates.SyllabusCertificates(ctx, p.SyllabusID)
		return "syllabusCertificates", res, err
	default:
		return "", nil, errors.New("unsupported message type")
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}
