package trialrun

var CtxWithLogger = ctxWithLogger
