package address

// SourceQuery fetches one row per living person with their address, first two landlines, mobile and
// e-mail list. Landline order is by internal row id. The mobile is MAX(DDD), MAX(NUMERO) per person.
const SourceQuery = `
WITH telefones AS (
    SELECT
        t.PESSOA_ID,
        t.DDD,
        t.NUMERO,
        t.TIPOTELEFONE,
        ROW_NUMBER() OVER (PARTITION BY t.PESSOA_ID, t.TIPOTELEFONE ORDER BY t.ID) AS rn
    FROM TB1152_TELEFONE t
    WHERE UPPER(t.TIPOTELEFONE) IN ('CASA','CELULAR')
),
casa AS (
    SELECT
        PESSOA_ID,
        MAX(CASE WHEN rn = 1 THEN DDD END) AS DDDTEL1,
        MAX(CASE WHEN rn = 1 THEN NUMERO END) AS TELEFONE1,
        MAX(CASE WHEN rn = 2 THEN DDD END) AS DDDTEL2,
        MAX(CASE WHEN rn = 2 THEN NUMERO END) AS TELEFONE2
    FROM telefones
    WHERE TIPOTELEFONE = 'CASA'
    GROUP BY PESSOA_ID
),
celular AS (
    SELECT
        PESSOA_ID,
        MAX(DDD) AS DDDCEL,
        MAX(NUMERO) AS CELULAR
    FROM telefones
    WHERE TIPOTELEFONE = 'CELULAR'
    GROUP BY PESSOA_ID
),
emails AS (
    SELECT
        PESSOA_ID,
        LISTAGG(EMAIL, '; ') WITHIN GROUP (ORDER BY EMAIL) AS EMAILS
    FROM TB1120_EMAIL
    GROUP BY PESSOA_ID
)
SELECT
    p.IDPESSOA AS IDPESSOA,
    e.ATUALIZACAO AS DTATUALIZACAO,
    e.LOGRADOURO AS ENDERECORUA,
    e.NUMERO AS ENDERECONUMERO,
    e.COMPLEMENTO AS ENDERECOCOMPLEMENTO,
    e.BAIRRO AS ENDERECABAIRRO,
    e.CIDADE_ID AS CDCIDADE,
    e.CEP,
    c.DDDTEL1,
    c.TELEFONE1,
    c.DDDTEL2,
    c.TELEFONE2,
    cel.DDDCEL,
    cel.CELULAR,
    em.EMAILS
FROM TB1173_PESSOA p
LEFT JOIN TB1121_ENDERECO e
    ON RAWTOHEX(e.IDPESSOA) = RAWTOHEX(p.IDPESSOA)
LEFT JOIN casa c
    ON c.PESSOA_ID = p.ID
LEFT JOIN celular cel
    ON cel.PESSOA_ID = p.ID
LEFT JOIN emails em
    ON em.PESSOA_ID = p.ID
WHERE RAWTOHEX(p.IDPESSOA) NOT IN (
    SELECT RAWTOHEX(f.IDPESSOA) FROM TB1124_FALECIMENTO f
)`

// NumSourceColumns is the number of columns returned by SourceQuery.
const NumSourceColumns = 15
