package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"schooltimetable/internal/config"
	"schooltimetable/internal/models"
	"schooltimetable/internal/timetable"
)

// TimetableHandler exposes slot editing and the teacher and team-teaching views
type TimetableHandler struct {
	mu       *sync.Mutex
	school   *config.School
	slots    *timetable.SlotStore
	resolver *timetable.Resolver
}

// NewTimetableHandler creates a timetable handler. mu must be shared with
// every other handler that touches the same slot store.
func NewTimetableHandler(mu *sync.Mutex, slots *timetable.SlotStore, resolver *timetable.Resolver) *TimetableHandler {
	return &TimetableHandler{
		mu:       mu,
		school:   slots.School(),
		slots:    slots,
		resolver: resolver,
	}
}

type classView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade,omitempty"`
}

type classesResponse struct {
	Classes []classView `json:"classes"`
	Days    []string    `json:"days"`
	Periods int         `json:"periods"`
}

// ListClasses returns the configured classes and week shape
func (h *TimetableHandler) ListClasses(w http.ResponseWriter, r *http.Request) {
	classes := make([]classView, 0, len(h.school.Classes))
	for _, class := range h.school.Classes {
		classes = append(classes, classView{ID: class.ID, Name: class.Name, Grade: class.Grade})
	}
	respondJSON(w, http.StatusOK, classesResponse{Classes: classes, Days: h.school.Days, Periods: h.school.Periods})
}

type classTimetableResponse struct {
	ClassID string              `json:"classId"`
	Week    [][][]models.Lesson `json:"week"`
}

// ClassTimetable returns the whole week of a class
func (h *TimetableHandler) ClassTimetable(w http.ResponseWriter, r *http.Request) {
	classID := r.PathValue("classId")

	h.mu.Lock()
	week, err := h.slots.ClassTimetable(classID)
	h.mu.Unlock()

	if errors.Is(err, timetable.ErrUnknownClass) {
		respondWithError(w, http.StatusNotFound, ErrUnknownClass, "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to build class timetable", err)
		return
	}

	respondJSON(w, http.StatusOK, classTimetableResponse{ClassID: classID, Week: week})
}

type slotResponse struct {
	ClassID string          `json:"classId"`
	Day     int             `json:"day"`
	Period  int             `json:"period"`
	Lessons []models.Lesson `json:"lessons"`
}

// GetSlot returns the lessons at one slot
func (h *TimetableHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.slotFromPath(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	lessons := h.slots.GetSlot(ref.ClassID, ref.Day, ref.Period)
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, slotResponse{ClassID: ref.ClassID, Day: ref.Day, Period: ref.Period, Lessons: lessons})
}

type setSlotRequest struct {
	SubjectID           string   `json:"subjectId"`
	TeacherIDs          []string `json:"teacherIds"`
	SpecialClassroomIDs []string `json:"specialClassroomIds"`
	Append              bool     `json:"append"`
}

// SetSlot places, appends or clears a lesson
func (h *TimetableHandler) SetSlot(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.slotFromPath(w, r)
	if !ok {
		return
	}

	var req setSlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	h.mu.Lock()
	h.slots.SetSlot(ref.ClassID, ref.Day, ref.Period, req.SubjectID, req.TeacherIDs, req.SpecialClassroomIDs, req.Append)
	lessons := h.slots.GetSlot(ref.ClassID, ref.Day, ref.Period)
	saveErr := h.slots.LastSaveError()
	h.mu.Unlock()

	if saveErr != nil {
		respondWithError(w, http.StatusInternalServerError, ErrSaveFailed, "Failed to save slot", saveErr)
		return
	}
	log.Printf("Slot %s %d-%d set by %s", ref.ClassID, ref.Day, ref.Period, editorOf(r))
	respondJSON(w, http.StatusOK, slotResponse{ClassID: ref.ClassID, Day: ref.Day, Period: ref.Period, Lessons: lessons})
}

// ClearSlot empties a slot
func (h *TimetableHandler) ClearSlot(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.slotFromPath(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	h.slots.ClearSlot(ref.ClassID, ref.Day, ref.Period)
	saveErr := h.slots.LastSaveError()
	h.mu.Unlock()

	if saveErr != nil {
		respondWithError(w, http.StatusInternalServerError, ErrSaveFailed, "Failed to save cleared slot", saveErr)
		return
	}
	log.Printf("Slot %s %d-%d cleared by %s", ref.ClassID, ref.Day, ref.Period, editorOf(r))
	respondJSON(w, http.StatusOK, slotResponse{ClassID: ref.ClassID, Day: ref.Day, Period: ref.Period, Lessons: []models.Lesson{}})
}

type slotRef struct {
	ClassID string `json:"classId"`
	Day     int    `json:"day"`
	Period  int    `json:"period"`
}

type moveRequest struct {
	From slotRef `json:"from"`
	To   slotRef `json:"to"`
}

// MoveSlot moves the first lesson of one slot to another
func (h *TimetableHandler) MoveSlot(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	for _, ref := range []slotRef{req.From, req.To} {
		if !h.checkSlot(w, ref) {
			return
		}
	}

	h.mu.Lock()
	result := h.slots.MoveSlot(req.From.ClassID, req.From.Day, req.From.Period, req.To.ClassID, req.To.Day, req.To.Period)
	saveErr := h.slots.LastSaveError()
	h.mu.Unlock()

	if saveErr != nil {
		respondWithError(w, http.StatusInternalServerError, ErrSaveFailed, "Failed to save moved slot", saveErr)
		return
	}
	status := http.StatusOK
	if !result.Success {
		status = http.StatusConflict
	} else {
		log.Printf("Slot %s %d-%d moved to %s %d-%d by %s",
			req.From.ClassID, req.From.Day, req.From.Period, req.To.ClassID, req.To.Day, req.To.Period, editorOf(r))
	}
	respondJSON(w, status, result)
}

type teacherSlotView struct {
	Lessons []models.TeacherLesson `json:"lessons"`
	Joint   bool                   `json:"joint"`
}

type teacherTimetableResponse struct {
	TeacherID string                             `json:"teacherId"`
	Name      string                             `json:"name"`
	Slots     map[models.TimeKey]teacherSlotView `json:"slots"`
}

// TeacherTimetable returns every lesson of a teacher keyed by "day-period"
func (h *TimetableHandler) TeacherTimetable(w http.ResponseWriter, r *http.Request) {
	teacherID := r.PathValue("teacherId")

	h.mu.Lock()
	byTime := h.slots.GetTeacherTimetable(teacherID)
	h.mu.Unlock()

	slots := make(map[models.TimeKey]teacherSlotView, len(byTime))
	for key, lessons := range byTime {
		slots[key] = teacherSlotView{Lessons: lessons, Joint: timetable.IsJointLesson(lessons)}
	}

	respondJSON(w, http.StatusOK, teacherTimetableResponse{
		TeacherID: teacherID,
		Name:      h.school.TeacherName(teacherID),
		Slots:     slots,
	})
}

// TeamTeaching returns the team-teaching group rooted at a slot
func (h *TimetableHandler) TeamTeaching(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.slotFromPath(w, r)
	if !ok {
		return
	}

	h.mu.Lock()
	group := h.resolver.IsTTSlot(ref.ClassID, ref.Day, ref.Period)
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, group)
}

// slotFromPath reads {classId}/{day}/{period} and writes the error response
// itself when they are invalid
func (h *TimetableHandler) slotFromPath(w http.ResponseWriter, r *http.Request) (slotRef, bool) {
	day, dayErr := strconv.Atoi(r.PathValue("day"))
	period, periodErr := strconv.Atoi(r.PathValue("period"))
	if dayErr != nil || periodErr != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidSlot, "", nil)
		return slotRef{}, false
	}

	ref := slotRef{ClassID: r.PathValue("classId"), Day: day, Period: period}
	return ref, h.checkSlot(w, ref)
}

func (h *TimetableHandler) checkSlot(w http.ResponseWriter, ref slotRef) bool {
	if !h.school.HasClass(ref.ClassID) {
		respondWithError(w, http.StatusNotFound, ErrUnknownClass, "", nil)
		return false
	}
	if !h.school.InRange(ref.Day, ref.Period) {
		respondWithError(w, http.StatusBadRequest, ErrInvalidSlot, "", nil)
		return false
	}
	return true
}
