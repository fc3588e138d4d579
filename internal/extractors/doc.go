// Package extractors pulls structured fields (price, phone number, Telegram
// handle) out of free message text. Each extracted token is removed from the
// returned text so the description never repeats structured data.
package extractors
