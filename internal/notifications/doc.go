// Package notifications sends push notifications about finished analysis
// runs through ntfy. Without a configured topic every notification is a
// silent no-op.
package notifications
