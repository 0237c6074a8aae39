package task

import (
	domain "github.com/example/taskboard/domain/task"
	userdomain "github.com/example/taskboard/domain/user"
)

// CanView reports whether the principal may see the task. Admins see
// everything; other users see tasks they created or are assigned to.
func CanView(p userdomain.Principal, t *domain.Task) bool {
	if p.IsAdmin() {
		return true
	}
	return t.CreatedBy == p.ID || (t.AssignedTo != "" && t.AssignedTo == p.ID)
}

// CanUpdate reports whether the principal may modify the task.
// The rule matches visibility: creator, assignee, or admin.
func CanUpdate(p userdomain.Principal, t *domain.Task) bool {
	return CanView(p, t)
}

// CanDelete reports whether the principal may delete the task.
// Assignees may not delete tasks they did not create.
func CanDelete(p userdomain.Principal, t *domain.Task) bool {
	if p.IsAdmin() {
		return true
	}
	return t.CreatedBy == p.ID
}

// CanRemoveDocument reports whether the principal may remove a document
// from the task. The document's uploader may remove it even when they
// could not delete the task itself.
func CanRemoveDocument(p userdomain.Principal, t *domain.Task, d *domain.Document) bool {
	if p.IsAdmin() {
		return true
	}
	return t.CreatedBy == p.ID || d.UploadedBy == p.ID
}

// CheckAttach validates a batch of uploads against the per-task document
// limit, the PDF-only rule, and the non-empty content rule. The batch is
// all-or-nothing: a single bad file rejects every upload in the request.
func CheckAttach(current int, uploads []AttachmentUpload) error {
	if current+len(uploads) > domain.MaxDocumentsPerTask {
		return domain.ErrDocumentLimitExceeded
	}
	for _, u := range uploads {
		if u.ContentType != domain.PDFContentType {
			return domain.ErrInvalidFileType
		}
		if len(u.Data) == 0 {
			return domain.ErrEmptyDocument
		}
	}
	return nil
}

// ShouldNotifyAssigned reports whether a TaskAssigned notification is due
// after an assignment change. Actors are never notified about their own
// actions, and clearing an assignment notifies no one.
func ShouldNotifyAssigned(actorID, prevAssignee, newAssignee string) bool {
	if newAssignee == "" {
		return false
	}
	if newAssignee == prevAssignee {
		return false
	}
	return newAssignee != actorID
}

// ShouldNotifyUpdated reports whether a TaskUpdated notification is due.
// Every successful update notifies the resulting assignee, whether or not
// the assignment itself changed.
func ShouldNotifyUpdated(assignee string) bool {
	return assignee != ""
}
