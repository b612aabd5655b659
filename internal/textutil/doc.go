// Package textutil provides text helpers shared by the dialogue and timeline
// stages.
//
// The primary use cases are:
//   - Normalizing recognized text (NFC, whitespace, hyphenated line breaks)
//   - Counting spoken words for duration estimates
//   - Recognizing onomatopoeia so sound-effect lettering is not voiced
//   - Sanitizing names for use as filesystem tokens
package textutil
