package validation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"schooltimetable/internal/models"
)

const (
	RuleTeacherConflict     = "teacher_conflict"
	RuleRoomConflict        = "room_conflict"
	RuleUnknownReference    = "unknown_reference"
	RuleTeacherDailyLoad    = "teacher_daily_load"
	RuleConsecutivePeriods  = "consecutive_periods"
	RuleEmptySlots          = "empty_slots"
	RuleTeamTeachingSummary = "team_teaching_summary"
)

// DefaultRules returns the built-in rules in run order
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:      RuleTeacherConflict,
			Name:    "Teacher double booking",
			Level:   models.LevelError,
			Enabled: true,
			Check:   checkTeacherConflicts,
		},
		{
			ID:      RuleRoomConflict,
			Name:    "Special classroom double booking",
			Level:   models.LevelError,
			Enabled: true,
			Check:   checkRoomConflicts,
		},
		{
			ID:      RuleUnknownReference,
			Name:    "Unknown subject, teacher or room",
			Level:   models.LevelError,
			Enabled: true,
			Check:   checkUnknownReferences,
		},
		{
			ID:        RuleTeacherDailyLoad,
			Name:      "Teacher daily load",
			Level:     models.LevelWarning,
			Enabled:   true,
			Threshold: intPtr(6),
			Check:     checkTeacherDailyLoad,
		},
		{
			ID:        RuleConsecutivePeriods,
			Name:      "Consecutive periods",
			Level:     models.LevelWarning,
			Enabled:   true,
			Threshold: intPtr(4),
			Check:     checkConsecutivePeriods,
		},
		{
			ID:      RuleEmptySlots,
			Name:    "Empty periods",
			Level:   models.LevelInfo,
			Enabled: true,
			Check:   checkEmptySlots,
		},
		{
			ID:      RuleTeamTeachingSummary,
			Name:    "Team teaching overview",
			Level:   models.LevelInfo,
			Enabled: false,
			Check:   checkTeamTeaching,
		},
	}
}

func intPtr(v int) *int {
	return &v
}

// placedLesson is a lesson together with its slot
type placedLesson struct {
	models.TeacherLesson
	Day    int
	Period int
}

// lessonsAt collects the lessons of every configured class at one time
func lessonsAt(env Env, day, period int) []placedLesson {
	var out []placedLesson
	for _, class := range env.School.Classes {
		for _, lesson := range env.Slots.GetSlot(class.ID, day, period) {
			out = append(out, placedLesson{
				TeacherLesson: models.TeacherLesson{Lesson: lesson, ClassID: class.ID},
				Day:           day,
				Period:        period,
			})
		}
	}
	return out
}

func forEachTime(env Env, fn func(day, period int)) {
	for day := range env.School.Days {
		for period := 0; period < env.School.Periods; period++ {
			fn(day, period)
		}
	}
}

func (env Env) slotLabel(day, period int) string {
	return fmt.Sprintf("%s period %d", env.School.DayName(day), period+1)
}

func (env Env) classNames(lessons []placedLesson) string {
	names := make([]string, 0, len(lessons))
	for _, l := range lessons {
		names = append(names, env.School.ClassName(l.ClassID))
	}
	return strings.Join(names, ", ")
}

// checkTeacherConflicts flags a teacher that appears in several lessons at
// the same time unless those lessons form one team-teaching group
func checkTeacherConflicts(env Env, _ Rule) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue

	forEachTime(env, func(day, period int) {
		byTeacher := make(map[string][]placedLesson)
		var order []string
		for _, l := range lessonsAt(env, day, period) {
			for _, teacherID := range l.TeacherIDs {
				if _, ok := byTeacher[teacherID]; !ok {
					order = append(order, teacherID)
				}
				byTeacher[teacherID] = append(byTeacher[teacherID], l)
			}
		}

		for _, teacherID := range order {
			lessons := byTeacher[teacherID]
			if len(lessons) < 2 || sameSession(env, lessons, day, period) {
				continue
			}
			issues = append(issues, models.ValidationIssue{
				Message: fmt.Sprintf("%s is booked for %d lessons on %s (%s)",
					env.School.TeacherName(teacherID), len(lessons), env.slotLabel(day, period), env.classNames(lessons)),
				Location: models.SlotLocation(lessons[0].ClassID, day, period),
			})
		}
	})

	return issues, nil
}

// sameSession reports whether the lessons are one joint session: each sits
// in its own class, all share a subject, they are linked to each other by
// shared teachers, and every one of them is a lesson of the team-teaching
// group rooted at the first
func sameSession(env Env, lessons []placedLesson, day, period int) bool {
	seen := make(map[string]bool, len(lessons))
	for _, l := range lessons {
		if seen[l.ClassID] || l.SubjectID != lessons[0].SubjectID {
			return false
		}
		seen[l.ClassID] = true
	}
	if !linkedByTeachers(lessons) {
		return false
	}

	group := env.Resolver.IsTTSlot(lessons[0].ClassID, day, period)
	for _, l := range lessons {
		if !groupHasLesson(group, l.TeacherLesson) {
			return false
		}
	}
	return true
}

// linkedByTeachers reports whether every lesson is reachable from the first
// through lessons that share a teacher
func linkedByTeachers(lessons []placedLesson) bool {
	reached := make([]bool, len(lessons))
	reached[0] = true
	queue := []int{0}
	for len(queue) > 0 {
		current := lessons[queue[0]]
		queue = queue[1:]
		for i, other := range lessons {
			if reached[i] || !sharesTeacher(current.Lesson, other.Lesson) {
				continue
			}
			reached[i] = true
			queue = append(queue, i)
		}
	}
	for _, ok := range reached {
		if !ok {
			return false
		}
	}
	return true
}

func sharesTeacher(a, b models.Lesson) bool {
	for _, id := range a.TeacherIDs {
		if b.HasTeacher(id) {
			return true
		}
	}
	return false
}

func groupHasLesson(group models.TTGroup, l models.TeacherLesson) bool {
	for _, slot := range group.Slots {
		if slot.ClassID == l.ClassID && slot.SubjectID == l.SubjectID &&
			slices.Equal(slot.TeacherIDs, l.TeacherIDs) {
			return true
		}
	}
	return false
}

// checkRoomConflicts flags a special classroom used by several lessons at the
// same time, unless they are one joint session
func checkRoomConflicts(env Env, _ Rule) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue

	forEachTime(env, func(day, period int) {
		byRoom := make(map[string][]placedLesson)
		var order []string
		for _, l := range lessonsAt(env, day, period) {
			for _, roomID := range l.SpecialClassroomIDs {
				if _, ok := byRoom[roomID]; !ok {
					order = append(order, roomID)
				}
				byRoom[roomID] = append(byRoom[roomID], l)
			}
		}

		for _, roomID := range order {
			lessons := byRoom[roomID]
			if len(lessons) < 2 || sameSession(env, lessons, day, period) {
				continue
			}
			issues = append(issues, models.ValidationIssue{
				Message: fmt.Sprintf("%s is used by %d lessons on %s (%s)",
					env.School.RoomName(roomID), len(lessons), env.slotLabel(day, period), env.classNames(lessons)),
				Location: models.SlotLocation(lessons[0].ClassID, day, period),
			})
		}
	})

	return issues, nil
}

// checkUnknownReferences flags ids missing from the school config. A category
// with no configured entries is not checked.
func checkUnknownReferences(env Env, _ Rule) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue
	school := env.School

	forEachTime(env, func(day, period int) {
		for _, l := range lessonsAt(env, day, period) {
			var unknown []string
			if len(school.Subjects) > 0 && !school.HasSubject(l.SubjectID) {
				unknown = append(unknown, "subject "+l.SubjectID)
			}
			if len(school.Teachers) > 0 {
				for _, id := range l.TeacherIDs {
					if !school.HasTeacher(id) {
						unknown = append(unknown, "teacher "+id)
					}
				}
			}
			if len(school.Rooms) > 0 {
				for _, id := range l.SpecialClassroomIDs {
					if !school.HasRoom(id) {
						unknown = append(unknown, "room "+id)
					}
				}
			}
			if len(unknown) == 0 {
				continue
			}
			issues = append(issues, models.ValidationIssue{
				Message: fmt.Sprintf("%s on %s refers to unknown %s",
					school.ClassName(l.ClassID), env.slotLabel(day, period), strings.Join(unknown, ", ")),
				Location: models.SlotLocation(l.ClassID, day, period),
			})
		}
	})

	return issues, nil
}

// teacherPeriods maps teacher -> day -> sorted periods the teacher is busy
func teacherPeriods(env Env) (map[string]map[int][]int, []string) {
	busy := make(map[string]map[int]map[int]bool)
	forEachTime(env, func(day, period int) {
		for _, l := range lessonsAt(env, day, period) {
			for _, teacherID := range l.TeacherIDs {
				if busy[teacherID] == nil {
					busy[teacherID] = make(map[int]map[int]bool)
				}
				if busy[teacherID][day] == nil {
					busy[teacherID][day] = make(map[int]bool)
				}
				busy[teacherID][day][period] = true
			}
		}
	})

	out := make(map[string]map[int][]int, len(busy))
	teachers := make([]string, 0, len(busy))
	for teacherID, days := range busy {
		teachers = append(teachers, teacherID)
		out[teacherID] = make(map[int][]int, len(days))
		for day, periods := range days {
			list := make([]int, 0, len(periods))
			for period := range periods {
				list = append(list, period)
			}
			sort.Ints(list)
			out[teacherID][day] = list
		}
	}
	sort.Strings(teachers)
	return out, teachers
}

func checkTeacherDailyLoad(env Env, rule Rule) ([]models.ValidationIssue, error) {
	if rule.Threshold == nil {
		return nil, fmt.Errorf("threshold not set")
	}
	limit := *rule.Threshold

	var issues []models.ValidationIssue
	busy, teachers := teacherPeriods(env)
	for _, teacherID := range teachers {
		for day := range env.School.Days {
			if n := len(busy[teacherID][day]); n > limit {
				issues = append(issues, models.ValidationIssue{
					Message: fmt.Sprintf("%s teaches %d periods on %s (limit %d)",
						env.School.TeacherName(teacherID), n, env.School.DayName(day), limit),
				})
			}
		}
	}
	return issues, nil
}

func checkConsecutivePeriods(env Env, rule Rule) ([]models.ValidationIssue, error) {
	if rule.Threshold == nil {
		return nil, fmt.Errorf("threshold not set")
	}
	limit := *rule.Threshold

	var issues []models.ValidationIssue
	busy, teachers := teacherPeriods(env)
	for _, teacherID := range teachers {
		for day := range env.School.Days {
			if run := longestRun(busy[teacherID][day]); run > limit {
				issues = append(issues, models.ValidationIssue{
					Message: fmt.Sprintf("%s teaches %d periods in a row on %s (limit %d)",
						env.School.TeacherName(teacherID), run, env.School.DayName(day), limit),
				})
			}
		}
	}
	return issues, nil
}

// longestRun returns the longest stretch of consecutive values in a sorted list
func longestRun(periods []int) int {
	longest, current := 0, 0
	for i, p := range periods {
		if i > 0 && p == periods[i-1]+1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func checkEmptySlots(env Env, _ Rule) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue
	for _, class := range env.School.Classes {
		empty := 0
		forEachTime(env, func(day, period int) {
			if len(env.Slots.GetSlot(class.ID, day, period)) == 0 {
				empty++
			}
		})
		if empty > 0 {
			issues = append(issues, models.ValidationIssue{
				Message:  fmt.Sprintf("%s has %d empty periods", env.School.ClassName(class.ID), empty),
				Location: &models.Location{ClassID: class.ID},
			})
		}
	}
	return issues, nil
}

// checkTeamTeaching lists each team-teaching group once
func checkTeamTeaching(env Env, _ Rule) ([]models.ValidationIssue, error) {
	var issues []models.ValidationIssue
	seen := make(map[string]bool)

	forEachTime(env, func(day, period int) {
		for _, class := range env.School.Classes {
			group := env.Resolver.IsTTSlot(class.ID, day, period)
			if !group.IsTT {
				continue
			}

			classes := append([]string(nil), group.ClassIDs...)
			sort.Strings(classes)
			key := fmt.Sprintf("%d/%d/%s", day, period, strings.Join(classes, ","))
			if seen[key] {
				continue
			}
			seen[key] = true

			names := make([]string, 0, len(group.TeacherIDs))
			for _, id := range group.TeacherIDs {
				names = append(names, env.School.TeacherName(id))
			}
			issues = append(issues, models.ValidationIssue{
				Message: fmt.Sprintf("Team teaching (%s) on %s: %s, classes %s, teachers %s",
					group.Type, env.slotLabel(day, period), env.School.SubjectName(group.Slots[0].SubjectID),
					strings.Join(classes, ", "), strings.Join(names, ", ")),
				Location: models.SlotLocation(class.ID, day, period),
			})
		}
	})

	return issues, nil
}
