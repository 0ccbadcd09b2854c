// User-facing message texts for the intake dialogue
package service

import "github.com/konekta/ouvidoria/pkg/db"

const (
	msgBemVindo = "🏢 *Bem-vindo à Ouvidoria!*\n\n" +
		"Para começarmos, você deseja se identificar?"

	msgPedirDados = "📝 Por favor, informe seus dados no formato:\n" +
		"*Nome, Telefone, Email*\n\n" +
		"Exemplo: João Silva, 11999999999, joao@email.com"

	msgFormatoInvalido = "❌ Formato inválido. Por favor, informe:\n*Nome, Telefone, Email*"

	msgTelefoneInvalido = "❌ Telefone inválido. Por favor, informe apenas números (com DDD)."

	msgRespostaIdentificacao = "❌ Por favor, responda com *Sim* ou *Anonimato*"

	msgLgpd = "🔒 *Termos de Consentimento LGPD*\n\n" +
		"Para continuarmos, precisamos do seu consentimento para o tratamento de dados pessoais " +
		"conforme a Lei Geral de Proteção de Dados."

	msgRespostaLgpd = "❌ Por favor, responda com *Concordo* ou *Não concordo*"

	msgSemConsentimento = "❌ Infelizmente não podemos prosseguir sem seu consentimento com a LGPD.\n\n" +
		"Obrigado pelo contato! 👋"

	msgTipoManifestacao = "📋 *Tipo de Manifestação*\n\n" +
		"Por favor, selecione o tipo da sua manifestação:"

	msgTipoInvalido = "❌ Tipo de manifestação inválido. Por favor, escolha uma das opções acima."

	msgCategoriaDenuncia = "🚨 *Categoria da Denúncia*\n\n" +
		"Por favor, selecione a categoria mais adequada:"

	msgCategoriaInvalida = "❌ Categoria inválida. Por favor, escolha uma das opções acima."

	msgRespostaConfirmacao = "❌ Por favor, responda com *Confirmar* ou *Corrigir*"

	msgErroInterno = "❌ Ocorreu um erro interno. Por favor, tente novamente."
)

// detailPrompt returns the per-type free-text prompt.
func detailPrompt(tipo db.TipoManifestacao) string {
	switch tipo {
	case db.TipoElogio:
		return "🌟 *Elogio*\n\nPor favor, descreva seu elogio detalhadamente:"
	case db.TipoSugestao:
		return "💡 *Sugestão*\n\nPor favor, descreva sua sugestão detalhadamente:"
	case db.TipoReclamacao:
		return "⚠️ *Reclamação*\n\nPor favor, descreva sua reclamação detalhadamente:"
	case db.TipoDenuncia:
		return "🚨 *Denúncia*\n\nPor favor, descreva os fatos detalhadamente:"
	default:
		return "📝 Por favor, descreva sua manifestação detalhadamente:"
	}
}

func resumoPrompt(resumo string) string {
	return "📄 *Resumo da Manifestação*\n\n" + resumo + "\n\nPor favor, confirme se está tudo correto:"
}

func protocoloMessage(protocolo string, tipo db.TipoManifestacao, when string) string {
	return "✅ *Manifestação registrada com sucesso!*\n\n" +
		"📋 *Protocolo:* " + protocolo + "\n" +
		"📝 *Tipo:* " + string(tipo) + "\n" +
		"⏰ *Data:* " + when + "\n\n" +
		"Agradecemos seu contato! 👋"
}
