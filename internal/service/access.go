package service

import "github.com/stemsi/trainhub-backend/internal/model"

// CanTeach allows admins and the assigned trainer to manage a course's
// sessions, materials and grades.
func CanTeach(actor Actor, course *model.Course) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsTrainer() && course.TrainerID != nil && *course.TrainerID == actor.ID {
		return nil
	}
	return ErrNotCourseTrainer
}

// CanViewCourseContent allows admins, the course trainer and enrolled
// trainees to read sessions, materials and rosters.
func CanViewCourseContent(actor Actor, course *model.Course, enrolled bool) error {
	if CanTeach(actor, course) == nil {
		return nil
	}
	if actor.IsTrainee() && enrolled {
		return nil
	}
	return ErrForbidden
}

// CheckRoleChange enforces who may move target to newRole and toggle the
// super-admin flag:
//   - nobody changes their own role or flag;
//   - only super-admins touch admins, promote to admin, or toggle the flag;
//   - the flag only exists on admins.
func CheckRoleChange(actor Actor, target *model.User, newRole model.Role, superAdmin *bool) error {
	if !newRole.Valid() {
		return ErrRoleChangeDenied
	}
	if actor.ID == target.ID {
		return ErrSelfAction
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	togglesFlag := superAdmin != nil && *superAdmin != target.IsSuperAdmin
	touchesAdmin := target.Role == model.RoleAdmin || newRole == model.RoleAdmin
	if (togglesFlag || touchesAdmin) && !actor.SuperAdmin {
		return ErrRoleChangeDenied
	}
	if superAdmin != nil && *superAdmin && newRole != model.RoleAdmin {
		return ErrRoleChangeDenied
	}
	return nil
}

// CheckUserDelete forbids self deletion and restricts deleting admins to super-admins.
func CheckUserDelete(actor Actor, target *model.User) error {
	if actor.ID == target.ID {
		return ErrSelfAction
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if target.Role == model.RoleAdmin && !actor.SuperAdmin {
		return ErrRoleChangeDenied
	}
	return nil
}

// CheckUserCreate restricts creating admins to super-admins.
func CheckUserCreate(actor Actor, role model.Role, superAdmin bool) error {
	if !role.Valid() {
		return ErrRoleChangeDenied
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if (role == model.RoleAdmin || superAdmin) && !actor.SuperAdmin {
		return ErrRoleChangeDenied
	}
	if superAdmin && role != model.RoleAdmin {
		return ErrRoleChangeDenied
	}
	return nil
}

// CanModerateThread reports whether actor may read a thread it is not part of.
func CanModerateThread(actor Actor) bool {
	return actor.IsAdmin()
}

// CheckThreadAccess allows participants and moderators.
func CheckThreadAccess(actor Actor, thread *model.FeedbackThread) error {
	if thread.HasParticipant(actor.ID) || CanModerateThread(actor) {
		return nil
	}
	return ErrNotParticipant
}

// CheckMessageEdit allows only the sender to edit a live message.
func CheckMessageEdit(actor Actor, msg *model.FeedbackMessage) error {
	if msg.SenderID != actor.ID {
		return ErrNotMessageSender
	}
	if msg.Deleted() {
		return ErrMessageDeleted
	}
	return nil
}

// CheckMessageDelete allows the sender or an admin to delete a live message.
func CheckMessageDelete(actor Actor, msg *model.FeedbackMessage) error {
	if msg.SenderID != actor.ID && !actor.IsAdmin() {
		return ErrNotMessageSender
	}
	if msg.Deleted() {
		return ErrMessageDeleted
	}
	return nil
}
