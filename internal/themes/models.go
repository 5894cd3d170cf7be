package themes

import pubthemes "github.com/goliatone/go-publish/themes"

type (
	Info      = pubthemes.Info
	Token     = pubthemes.Token
	TokenKind = pubthemes.TokenKind
)
