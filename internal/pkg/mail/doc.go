// Package mail sends email. The SMTP implementation is used by the email
// channel of the notification sender.
package mail
