package authapi

import "context"

// Audit events go to the structured log; emails and user ids are fine to
// record, passwords and tokens never are.

func (h *Handler) auditLoginFailed(ctx context.Context, ip string, email, reason string) {
	h.log.InfoContext(ctx, "auth.login.fail", "email", email, "reason", reason, "ip", ip)
}

func (h *Handler) auditLoginSuccess(ctx context.Context, ip string, userID, email string) {
	h.log.InfoContext(ctx, "auth.login.success", "user_id", userID, "email", email, "ip", ip)
}

func (h *Handler) auditLogout(ctx context.Context, ip string, userID string) {
	h.log.InfoContext(ctx, "auth.logout", "user_id", userID, "ip", ip)
}
