package identity

import "strings"

// NamespaceEmail reescribe el email externo para aislarlo por tenant:
// "a@ex.com" + tenant "t1" => "a+t1@ex.com".
//
// Es una función pura: el mismo par (tenant, email externo) produce
// siempre la misma identidad, lo que garantiza reuso de cuenta en
// logins sucesivos y evita colisiones entre tenants que atestiguan el
// mismo email externo.
//
// Compat: la contraseña de la cuenta aprovisionada es igual al email
// namespaceado (ver services/sso). Es un patrón de credencial débil
// heredado del contrato capturado; endurecerlo cambia el comportamiento
// observable frente al directorio, así que se mantiene y se documenta.
func NamespaceEmail(email, tenantID string) string {
	return strings.Replace(email, "@", "+"+tenantID+"@", 1)
}
