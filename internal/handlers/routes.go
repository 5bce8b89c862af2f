package handlers

import "net/http"

// RegisterRoutes wires the JSON API onto mux
func RegisterRoutes(mux *http.ServeMux, m *Middleware, th *TimetableHandler, vh *ValidationHandler) {
	mux.HandleFunc("GET /api/classes", th.ListClasses)
	mux.HandleFunc("GET /api/classes/{classId}/timetable", th.ClassTimetable)

	mux.HandleFunc("GET /api/slots/{classId}/{day}/{period}", th.GetSlot)
	mux.HandleFunc("PUT /api/slots/{classId}/{day}/{period}", m.Editor(th.SetSlot))
	mux.HandleFunc("DELETE /api/slots/{classId}/{day}/{period}", m.Editor(th.ClearSlot))
	mux.HandleFunc("POST /api/slots/move", m.Editor(th.MoveSlot))
	mux.HandleFunc("GET /api/slots/{classId}/{day}/{period}/team-teaching", th.TeamTeaching)

	mux.HandleFunc("GET /api/teachers/{teacherId}/timetable", th.TeacherTimetable)

	mux.HandleFunc("GET /api/validation", vh.Validate)
	mux.HandleFunc("GET /api/validation/rules", vh.ListRules)
	mux.HandleFunc("PUT /api/validation/rules/{ruleId}", m.Editor(vh.UpdateRule))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
