// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

package postui

import (
	"github.com/quill-blog/quill/lib/api"
	"github.com/quill-blog/quill/lib/session"
)

// superadminID is the account that can never be demoted and is the
// only account allowed to demote other admins.
const superadminID = 1

// CanModify reports whether the identity may edit or delete the post.
// Admins may modify any post; everyone else only their own. This is a
// UI affordance: the server enforces the same rule on every request.
func CanModify(identity session.Identity, post api.Post) bool {
	if identity.IsZero() {
		return false
	}
	return identity.IsAdmin() || identity.ID == post.UserID
}

// CanPromote reports whether the actor may promote the target to
// admin.
func CanPromote(actor session.Identity, target api.User) bool {
	return actor.IsAdmin() && !target.IsAdmin()
}

// CanDemote reports whether the actor may strip the target's admin
// role. Only the superadmin account may demote, and the superadmin
// itself is immune.
func CanDemote(actor session.Identity, target api.User) bool {
	return actor.ID == superadminID && target.IsAdmin() && target.ID != superadminID
}
