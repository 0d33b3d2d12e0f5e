package webspeech

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/koscakluka/linguaflow/core/speechtotext/webspeech"

var logger = otelslog.NewLogger(scopeName)
