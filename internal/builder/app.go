package builder

import (
	"github.com/shouni/go-tcg-asset-kit/internal/config"
	"github.com/shouni/go-tcg-asset-kit/pkg/source"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持します。
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config     *config.Config          // Configは、ファイルと環境変数から読み込まれた設定です。
	Options    config.GenerateOptions  // Optionsは、コマンドラインから渡された実行時の設定です（モード、カード名など）。
	Credential config.Credential       // Credentialは、選択されたバックエンドの APIキーです。
	Opener     *source.Opener          // Openerは、カードデータベースと参照画像の読み込みに使用する入力元です。
	httpClient httpkit.ClientInterface // httpClient は取得用URLからのダウンロードと Gemini の画像取得に使う共通クライアント
}

// NewAppContext は AppContext の新しいインスタンスを生成します。
func NewAppContext(cfg *config.Config, cred config.Credential, opener *source.Opener, httpClient httpkit.ClientInterface) AppContext {
	return AppContext{
		Config:     cfg,
		Options:    cfg.Options,
		Credential: cred,
		Opener:     opener,
		httpClient: httpClient,
	}
}
