package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kitconfig "github.com/shouni/go-tcg-asset-kit/pkg/config"

	"github.com/shouni/go-utils/envutil"
)

// ErrMissingCredentials は APIキーがファイルにも環境変数にも見つからない場合に返されます。
var ErrMissingCredentials = errors.New("APIキーが見つかりません")

// credentialSource はバックエンドごとの APIキーの置き場所です。
type credentialSource struct {
	File string
	Env  string
}

var credentialSources = map[string]credentialSource{
	kitconfig.BackendOpenAI: {File: ".openai-key", Env: "OPENAI_API_KEY"},
	kitconfig.BackendGemini: {File: ".gemini-key", Env: "GEMINI_API_KEY"},
}

// Credential は解決済みの APIキーとその取得元です。
type Credential struct {
	Key    string
	Source string
}

// ResolveCredential はバックエンドの APIキーを解決します。
// projectRoot 直下のキーファイルが環境変数より優先されます。空のキーファイルは存在しないものとして扱います。
func ResolveCredential(projectRoot, backend string) (Credential, error) {
	src, ok := credentialSources[backend]
	if !ok {
		return Credential{}, fmt.Errorf("サポートされていないバックエンドです: %q", backend)
	}

	keyFile := filepath.Join(projectRoot, src.File)
	data, err := os.ReadFile(keyFile)
	switch {
	case err == nil:
		if key := strings.TrimSpace(string(data)); key != "" {
			return Credential{Key: key, Source: keyFile}, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return Credential{}, fmt.Errorf("キーファイル '%s' の読み込みに失敗しました: %w", keyFile, err)
	}

	if key := strings.TrimSpace(envutil.GetEnv(src.Env, "")); key != "" {
		return Credential{Key: key, Source: src.Env}, nil
	}

	return Credential{}, fmt.Errorf("%w: %s を作成するか、環境変数 %s を設定してください", ErrMissingCredentials, keyFile, src.Env)
}
