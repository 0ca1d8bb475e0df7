package handler

import (
	"errors"
	"net/http"
	"time"

	"dymm/internal/http/respond"
	"dymm/internal/lifelog"
	"dymm/internal/tag"

	"github.com/go-chi/chi/v5"
)

const minYear = 1960

type LogHandler struct {
	Logs *lifelog.Service
}

type createLogReq struct {
	AvatarID   uint64  `json:"avatar_id"`
	TagID      uint64  `json:"tag_id" validate:"required"`
	LogDate    string  `json:"log_date" validate:"required,datetime=2006-01-02"`
	XVal       int     `json:"x_val" validate:"gte=0"`
	YVal       int     `json:"y_val" validate:"gte=0"`
	LogGroupID *uint64 `json:"log_group_id" validate:"omitempty,gt=0"`
}

func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLogReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := caller(w, r, req.AvatarID)
	if !ok {
		return
	}
	day, _ := time.Parse(time.DateOnly, req.LogDate)

	groupID, err := h.Logs.CreateLog(r.Context(), lifelog.CreateLogInput{
		AvatarID: id,
		TagID:    req.TagID,
		LogDate:  day,
		XVal:     req.XVal,
		YVal:     req.YVal,
		GroupID:  req.LogGroupID,
	})
	if err != nil {
		logError(w, r, err)
		return
	}
	respond.OK(w, "Ok", map[string]uint64{"group_id": groupID})
}

// Groups lists the avatar's groups in a month.
func (h *LogHandler) Groups(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	p, ok := monthParam(w, r)
	if !ok {
		return
	}
	h.listGroups(w, r, id, p)
}

// WeekGroups lists the avatar's groups in an ISO week.
func (h *LogHandler) WeekGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	p, ok := weekParam(w, r)
	if !ok {
		return
	}
	h.listGroups(w, r, id, p)
}

func (h *LogHandler) listGroups(w http.ResponseWriter, r *http.Request, avatarID uint64, p lifelog.Period) {
	groups, err := h.Logs.Groups(r.Context(), avatarID, p)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", groups)
}

type groupLogsResp struct {
	GroupID   uint64               `json:"group_id"`
	FoodLogs  []lifelog.TagLogView `json:"food_logs,omitempty"`
	ActLogs   []lifelog.TagLogView `json:"act_logs,omitempty"`
	DrugLogs  []lifelog.TagLogView `json:"drug_logs,omitempty"`
	CondScore *int                 `json:"cond_score,omitempty"`
}

// GroupLogs returns a group's logs split by tag type.
func (h *LogHandler) GroupLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	groupID, ok := urlUint(w, r, "groupID")
	if !ok {
		return
	}
	g, err := h.Logs.Group(r.Context(), id, groupID)
	if err != nil {
		logError(w, r, err)
		return
	}
	logs, err := h.Logs.GroupLogs(r.Context(), id, groupID, 0)
	if err != nil {
		logError(w, r, err)
		return
	}

	resp := groupLogsResp{GroupID: g.ID, CondScore: g.CondScore}
	for _, l := range logs {
		switch l.TagType {
		case tag.TypeFood:
			resp.FoodLogs = append(resp.FoodLogs, l)
		case tag.TypeActivity:
			resp.ActLogs = append(resp.ActLogs, l)
		case tag.TypeDrug:
			resp.DrugLogs = append(resp.DrugLogs, l)
		}
	}
	respond.OK(w, "Ok", resp)
}

type groupOptionReq struct {
	CondScore *int   `json:"cond_score" validate:"omitempty,gte=0,lte=1000"`
	NoteTxt   string `json:"note_txt" validate:"max=2000"`
}

// GroupOption removes a group or sets its score or note.
func (h *LogHandler) GroupOption(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	groupID, ok := urlUint(w, r, "groupID")
	if !ok {
		return
	}

	var err error
	switch chi.URLParam(r, "option") {
	case "remove":
		err = h.Logs.RemoveGroup(r.Context(), id, groupID)
	case "score":
		var req groupOptionReq
		if !decode(w, r, &req) {
			return
		}
		err = h.Logs.SetScore(r.Context(), id, groupID, req.CondScore)
	case "note":
		var req groupOptionReq
		if !decode(w, r, &req) {
			return
		}
		err = h.Logs.SetNote(r.Context(), id, groupID, req.NoteTxt)
	default:
		respond.BadRequest(w, "Bad request, invalid option")
		return
	}
	if err != nil {
		logError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}

// RemoveLog deactivates one tag log.
func (h *LogHandler) RemoveLog(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	logID, ok := urlUint(w, r, "tagLogID")
	if !ok {
		return
	}
	if err := h.Logs.RemoveLog(r.Context(), id, logID); err != nil {
		logError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}

func (h *LogHandler) Notes(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	page, ok := urlInt(w, r, "page")
	if !ok {
		return
	}
	groups, err := h.Logs.Notes(r.Context(), id, page)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", groups)
}

// MonthAvg compares the month's average score with the month before.
func (h *LogHandler) MonthAvg(w http.ResponseWriter, r *http.Request) {
	p, ok := monthParam(w, r)
	if !ok {
		return
	}
	h.compare(w, r, p, "month")
}

func (h *LogHandler) WeekAvg(w http.ResponseWriter, r *http.Request) {
	p, ok := weekParam(w, r)
	if !ok {
		return
	}
	h.compare(w, r, p, "week")
}

func (h *LogHandler) YearAvg(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	h.compare(w, r, lifelog.Year{Year: year}, "year")
}

func (h *LogHandler) compare(w http.ResponseWriter, r *http.Request, p lifelog.Period, unit string) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	c, err := h.Logs.CompareScore(r.Context(), id, p)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", map[string]string{
		"this_" + unit + "_score": lifelog.FormatScore(c.This),
		"last_" + unit + "_score": lifelog.FormatScore(c.Previous),
	})
}

type condReq struct {
	AvatarID  uint64 `json:"avatar_id"`
	TagID     uint64 `json:"tag_id" validate:"required"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *LogHandler) CreateCond(w http.ResponseWriter, r *http.Request) {
	var req condReq
	if !decode(w, r, &req) {
		return
	}
	id, ok := caller(w, r, req.AvatarID)
	if !ok {
		return
	}
	condID, err := h.Logs.AddCond(r.Context(), lifelog.CondInput{
		AvatarID:  id,
		TagID:     req.TagID,
		StartDate: optionalDate(req.StartDate),
		EndDate:   optionalDate(req.EndDate),
	})
	if err != nil {
		logError(w, r, err)
		return
	}
	respond.OK(w, "Ok", map[string]uint64{"avatar_cond_id": condID})
}

func (h *LogHandler) Conds(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUint(w, r, "avatarID")
	if !ok {
		return
	}
	conds, err := h.Logs.Conds(r.Context(), id)
	if err != nil {
		respond.ServerError(w, r, err)
		return
	}
	respond.OK(w, "Ok", conds)
}

func (h *LogHandler) RemoveCond(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, 0)
	if !ok {
		return
	}
	condID, ok := urlUint(w, r, "condID")
	if !ok {
		return
	}
	if err := h.Logs.RemoveCond(r.Context(), id, condID); err != nil {
		logError(w, r, err)
		return
	}
	respond.OK(w, "Ok", nil)
}

func logError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, lifelog.ErrGroupNotFound):
		respond.NotFound(w, "Log group not found")
	case errors.Is(err, lifelog.ErrLogNotFound):
		respond.NotFound(w, "Tag log not found")
	case errors.Is(err, lifelog.ErrCondNotFound):
		respond.NotFound(w, "Condition not found")
	case errors.Is(err, lifelog.ErrTagNotFound):
		respond.BadRequest(w, "Bad request, unknown tag_id")
	case errors.Is(err, lifelog.ErrNotLoggable):
		respond.BadRequest(w, "Bad request, tag cannot be logged")
	case errors.Is(err, lifelog.ErrInvalidScore):
		respond.BadRequest(w, "Bad request, invalid cond_score")
	case errors.Is(err, lifelog.ErrInvalidDates):
		respond.BadRequest(w, "Bad request, end_date before start_date")
	default:
		respond.ServerError(w, r, err)
	}
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, ok := urlInt(w, r, "year")
	if !ok {
		return 0, false
	}
	if year < minYear || year > 9999 {
		respond.BadRequest(w, "Bad request, invalid year")
		return 0, false
	}
	return year, true
}

func monthParam(w http.ResponseWriter, r *http.Request) (lifelog.Month, bool) {
	year, ok := yearParam(w, r)
	if !ok {
		return lifelog.Month{}, false
	}
	month, ok := urlInt(w, r, "month")
	if !ok {
		return lifelog.Month{}, false
	}
	if month < 1 || month > 12 {
		respond.BadRequest(w, "Bad request, invalid month")
		return lifelog.Month{}, false
	}
	return lifelog.Month{Year: year, Month: month}, true
}

func weekParam(w http.ResponseWriter, r *http.Request) (lifelog.Week, bool) {
	year, ok := yearParam(w, r)
	if !ok {
		return lifelog.Week{}, false
	}
	week, ok := urlInt(w, r, "week")
	if !ok {
		return lifelog.Week{}, false
	}
	if week < 1 || week > lifelog.ISOWeeksIn(year) {
		respond.BadRequest(w, "Bad request, invalid week")
		return lifelog.Week{}, false
	}
	return lifelog.Week{Year: year, Week: week}, true
}

func optionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &d
}
