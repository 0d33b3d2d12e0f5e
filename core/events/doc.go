// Package events defines the typed orchestration event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - listening.*
//   - transcript.*
//   - speech.*
//   - translation.*
//
// listening events
//
//   - ListeningStarted (listening.started): a recognition run began.
//   - ListeningEnded (listening.ended): the run ended without an error.
//   - ListeningFailed (listening.failed): the run ended with an error.
//
// transcript events
//
//   - TranscriptInterim (transcript.interim): provisional text, replaced by
//     the next transcript event.
//   - TranscriptFinal (transcript.final): finalized text for an utterance.
//
// speech events
//
//   - SpeechRequested (speech.requested): a synthesis request was accepted.
//   - SpeechRendered (speech.rendered): its audio was handed to the output.
//   - SpeechFailed (speech.failed): no path could render it.
//   - SpeechSuperseded (speech.superseded): a newer request replaced it
//     before its audio was played.
//
// translation events
//
//   - TranslationCompleted (translation.completed): the primary backend
//     translated the text.
//   - TranslationDegraded (translation.degraded): a fallback produced the
//     text.
package events
